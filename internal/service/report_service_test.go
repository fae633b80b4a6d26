package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/jobs"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type reportMetricsStub struct {
	mu       sync.Mutex
	statuses []models.ReportStatus
}

func (m *reportMetricsStub) RecordReportJob(status models.ReportStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

type reportFixture struct {
	store   *repository.DataStore
	service *ReportService
	worker  *ReportWorker
	queue   *queueStub
	metrics *reportMetricsStub
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	store, _ := newTestStore(t)
	exporter, _ := newExportServiceForTest(t, store)
	queue := &queueStub{}
	metrics := &reportMetricsStub{}
	svc := NewReportService(ReportServiceParams{
		Jobs:     store.ReportJobs,
		Students: store,
		Queue:    queue,
		Exporter: exporter,
		Metrics:  metrics,
		Logger:   zap.NewNop(),
		Config:   ReportServiceConfig{ResultTTL: time.Hour, CleanupInterval: time.Hour},
	})
	svc.now = fixedClock
	worker := NewReportWorker(store.ReportJobs, exporter, metrics, zap.NewNop())
	worker.now = fixedClock
	return reportFixture{store: store, service: svc, worker: worker, queue: queue, metrics: metrics}
}

func TestReportServiceCreateJob(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	resp, err := f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: models.ReportTypeMood, Format: models.ReportFormatCSV})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, resp.ID, f.queue.jobs[0].ID)
	assert.Equal(t, ReportJobType, f.queue.jobs[0].Type)

	stored, found, err := f.store.ReportJobs.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, adminActor.UserID, stored.CreatedBy)
	assert.Equal(t, []models.ReportStatus{models.ReportStatusQueued}, f.metrics.statuses)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: "grades", Format: models.ReportFormatCSV})
	assertAppCode(t, err, appErrors.ErrValidation.Code)

	_, err = f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: models.ReportTypeRisk, Format: models.ReportFormatPDF, StudentID: "EST-0000"})
	assertAppCode(t, err, appErrors.ErrValidation.Code)

	assert.Empty(t, f.queue.jobs)
	jobsStored, err := f.store.ReportJobs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, jobsStored)
}

func TestReportServiceEnqueueFailureMarksJobFailed(t *testing.T) {
	f := newReportFixture(t)
	f.queue.err = errors.New("queue closed")
	ctx := context.Background()

	_, err := f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: models.ReportTypeRisk, Format: models.ReportFormatCSV})
	assertAppCode(t, err, appErrors.ErrInternal.Code)

	stored, err := f.store.ReportJobs.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.ReportStatusFailed, stored[0].Status)
	assert.Equal(t, "failed to enqueue job", stored[0].ErrorMessage)
	assert.NotZero(t, stored[0].FinishedAt)
}

func TestReportWorkerGeneratesAndDownloadResolves(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	resp, err := f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: models.ReportTypeRisk, Format: models.ReportFormatCSV})
	require.NoError(t, err)
	require.NoError(t, f.worker.Handle(ctx, f.queue.jobs[0]))

	status, err := f.service.GetStatus(ctx, adminActor, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotEmpty(t, status.DownloadURL)

	download, err := f.service.ResolveDownload(ctx, extractToken(status.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.Contains(t, download.ContentType, "text/csv")
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Laura Gómez")

	// A finished job is not processed twice.
	require.NoError(t, f.worker.Handle(ctx, f.queue.jobs[0]))
	assert.Equal(t, []models.ReportStatus{models.ReportStatusQueued, models.ReportStatusFinished}, f.metrics.statuses)
}

func TestReportServiceResolveDownloadRejectsBadToken(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.service.ResolveDownload(ctx, "report_1.1.abc.deadbeef")
	assertAppCode(t, err, appErrors.ErrForbidden.Code)

	resp, err := f.service.CreateJob(ctx, adminActor, dto.ReportRequest{Type: models.ReportTypeRisk, Format: models.ReportFormatCSV})
	require.NoError(t, err)
	token, _, err := f.service.exporter.signer.Sign(resp.ID, "risk.csv")
	require.NoError(t, err)
	_, err = f.service.ResolveDownload(ctx, token)
	assertAppCode(t, err, appErrors.ErrForbidden.Code)
}

func TestReportServiceStatusOwnership(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	resp, err := f.service.CreateJob(ctx, psychologistActor, dto.ReportRequest{Type: models.ReportTypeSessions, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	_, err = f.service.GetStatus(ctx, tutorActor, resp.ID)
	assertAppCode(t, err, appErrors.ErrForbidden.Code)
	_, err = f.service.GetStatus(ctx, adminActor, resp.ID)
	require.NoError(t, err)
	_, err = f.service.GetStatus(ctx, adminActor, "report_missing")
	assertAppCode(t, err, appErrors.ErrNotFound.Code)

	mine, err := f.service.List(ctx, psychologistActor)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.service.List(ctx, tutorActor)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	queued, err := f.store.ReportJobs.Add(ctx, models.ReportJob{Type: models.ReportTypeMood, Format: models.ReportFormatCSV, Status: models.ReportStatusQueued})
	require.NoError(t, err)
	interrupted, err := f.store.ReportJobs.Add(ctx, models.ReportJob{Type: models.ReportTypeRisk, Format: models.ReportFormatPDF, Status: models.ReportStatusProcessing, Progress: 10})
	require.NoError(t, err)
	_, err = f.store.ReportJobs.Add(ctx, models.ReportJob{Type: models.ReportTypeRisk, Format: models.ReportFormatPDF, Status: models.ReportStatusFinished})
	require.NoError(t, err)

	assert.Equal(t, 2, f.service.RecoverPendingJobs(ctx))
	ids := []string{f.queue.jobs[0].ID, f.queue.jobs[1].ID}
	assert.ElementsMatch(t, []string{queued.ID, interrupted.ID}, ids)

	reset, _, err := f.store.ReportJobs.Get(ctx, interrupted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, reset.Status)
	assert.Zero(t, reset.Progress)
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}
