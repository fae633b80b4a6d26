package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/jobs"
	"github.com/noah-isme/wellness-api/pkg/storage"
)

// ReportJobType is the queue job type of report generation.
const ReportJobType = "report"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportMetrics interface {
	RecordReportJob(status models.ReportStatus)
}

type studentLookup interface {
	FindStudent(studentID string) (models.Student, bool)
}

// ReportServiceConfig governs queue recovery and cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File        *os.File
	Filename    string
	Format      models.ReportFormat
	ContentType string
	ExpiresAt   time.Time
}

// ReportService orchestrates report job lifecycle management.
type ReportService struct {
	repo      recordStore[models.ReportJob]
	students  studentLookup
	queue     jobDispatcher
	exporter  *ExportService
	metrics   reportMetrics
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       ReportServiceConfig
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Jobs      recordStore[models.ReportJob]
	Students  studentLookup
	Queue     jobDispatcher
	Exporter  *ExportService
	Metrics   reportMetrics
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(params ReportServiceParams) *ReportService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{
		repo:      params.Jobs,
		students:  params.Students,
		queue:     params.Queue,
		exporter:  params.Exporter,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// SetQueue attaches the dispatcher once the worker pool exists.
func (s *ReportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob validates the request, persists a QUEUED job and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, actor models.Actor, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "report")
	}
	if req.StudentID != "" && s.students != nil {
		if _, ok := s.students.FindStudent(req.StudentID); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown studentId")
		}
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue not configured")
	}

	job, err := s.repo.Add(ctx, models.ReportJob{
		Type:      req.Type,
		Format:    req.Format,
		StudentID: req.StudentID,
		Status:    models.ReportStatusQueued,
		CreatedBy: actor.UserID,
	})
	if err != nil {
		return nil, storeError(err, "create report job")
	}
	s.record(models.ReportStatusQueued)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ReportJobType}); err != nil {
		s.MarkFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata. Only the creator or an admin may read it.
func (s *ReportService) GetStatus(ctx context.Context, actor models.Actor, id string) (*dto.ReportStatusResponse, error) {
	job, err := findRecord(ctx, s.repo, id, "report job")
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && job.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	resp := statusResponse(job)
	return &resp, nil
}

// List returns the jobs visible to the actor, newest first.
func (s *ReportService) List(ctx context.Context, actor models.Actor) ([]dto.ReportStatusResponse, error) {
	all, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, storeError(err, "list report jobs")
	}
	visible := lo.Filter(all, func(j models.ReportJob, _ int) bool {
		return actor.Role == models.RoleAdmin || j.CreatedBy == actor.UserID
	})
	sort.SliceStable(visible, func(i, k int) bool { return visible[i].CreatedAt > visible[k].CreatedAt })
	return lo.Map(visible, func(j models.ReportJob, _ int) dto.ReportStatusResponse { return statusResponse(j) }), nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	grant, err := s.exporter.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := findRecord(ctx, s.repo, grant.JobID, "report job")
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	if !strings.HasSuffix(job.ResultURL, "/"+token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.exporter.Open(grant.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report file expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	contentType := "application/octet-stream"
	if r, err := s.exporter.renders(string(job.Format)); err == nil {
		contentType = r.ContentType()
	}
	return &ReportDownload{
		File:        file,
		Filename:    filepath.Base(grant.Path),
		Format:      job.Format,
		ContentType: contentType,
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// MarkFailed records a terminal failure for the job.
func (s *ReportService) MarkFailed(ctx context.Context, id, message string) {
	_, _, err := s.repo.Update(ctx, id, models.Patch{
		"status":     models.ReportStatusFailed,
		"progress":   100,
		"error":      message,
		"finishedAt": models.Millis(s.now()),
	})
	if err != nil {
		s.logger.Sugar().Warnw("failed to mark report job failed", "job_id", id, "error", err)
		return
	}
	s.record(models.ReportStatusFailed)
}

// RecoverPendingJobs replays jobs a previous process left unfinished.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) int {
	all, err := s.repo.List(ctx, "")
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued report jobs", "error", err)
		return 0
	}
	recovered := 0
	for _, job := range all {
		if job.Status != models.ReportStatusQueued && job.Status != models.ReportStatusProcessing {
			continue
		}
		if job.Status == models.ReportStatusProcessing {
			if _, _, err := s.repo.Update(ctx, job.ID, models.Patch{"status": models.ReportStatusQueued, "progress": 0}); err != nil {
				s.logger.Sugar().Warnw("failed to reset interrupted job", "job_id", job.ID, "error", err)
				continue
			}
		}
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ReportJobType}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
			continue
		}
		recovered++
	}
	return recovered
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes the files of jobs finished before the result TTL
// and prunes anything else left in the export directory.
func (s *ReportService) CleanupExpired(ctx context.Context) {
	cutoff := models.Millis(s.now().Add(-s.cfg.ResultTTL))
	all, err := s.repo.List(ctx, "")
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range all {
		if job.ResultURL == "" || job.FinishedAt == 0 || job.FinishedAt > cutoff {
			continue
		}
		grant, err := s.exporter.Verify(extractToken(job.ResultURL))
		if err != nil && !errors.Is(err, storage.ErrTokenExpired) {
			continue
		}
		if err := s.exporter.Delete(grant.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ReportService) record(status models.ReportStatus) {
	if s.metrics != nil {
		s.metrics.RecordReportJob(status)
	}
}

func statusResponse(job models.ReportJob) dto.ReportStatusResponse {
	return dto.ReportStatusResponse{
		ID:           job.ID,
		Type:         job.Type,
		Format:       job.Format,
		Status:       job.Status,
		Progress:     job.Progress,
		DownloadURL:  job.ResultURL,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReportWorker bridges queue jobs to ExportService.
type ReportWorker struct {
	repo     recordStore[models.ReportJob]
	exporter *ExportService
	metrics  reportMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo recordStore[models.ReportJob], exporter *ExportService, metrics reportMetrics, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger, now: time.Now}
}

// Handle processes one queued report. A returned error makes the queue retry.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, found, err := w.repo.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	if !found {
		w.logger.Sugar().Warnw("report job vanished", "job_id", job.ID)
		return nil
	}
	if record.Status == models.ReportStatusFinished || record.Status == models.ReportStatusFailed {
		return nil
	}
	if _, _, err := w.repo.Update(ctx, job.ID, models.Patch{"status": models.ReportStatusProcessing, "progress": 10}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		return fmt.Errorf("generate %s report: %w", record.Type, err)
	}

	if _, _, err := w.repo.Update(ctx, job.ID, models.Patch{
		"status":     models.ReportStatusFinished,
		"progress":   100,
		"resultUrl":  result.URL,
		"error":      nil,
		"finishedAt": models.Millis(w.now()),
	}); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.RecordReportJob(models.ReportStatusFinished)
	}
	w.logger.Sugar().Infow("report generated", "job_id", job.ID, "type", record.Type, "format", record.Format, "path", result.RelativePath)
	return nil
}
