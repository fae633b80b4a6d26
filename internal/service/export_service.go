package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	"github.com/noah-isme/wellness-api/pkg/export"
	"github.com/noah-isme/wellness-api/pkg/storage"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	Prune(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Sign(jobID, path string) (string, time.Time, error)
	Verify(token string) (storage.Grant, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets from the store and persists the
// rendered files.
type ExportService struct {
	store   *repository.DataStore
	files   fileStorage
	signer  urlSigner
	logger  *zap.Logger
	now     func() time.Time
	cfg     ExportConfig
	renders func(format string) (export.Renderer, error)
}

// NewExportService constructs an ExportService.
func NewExportService(store *repository.DataStore, files fileStorage, signer urlSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		store:   store,
		files:   files,
		signer:  signer,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
		renders: export.ForFormat,
	}
}

// Generate renders the job's dataset and stores the file behind a signed URL.
func (s *ExportService) Generate(ctx context.Context, job models.ReportJob) (*ExportResult, error) {
	renderer, err := s.renders(string(job.Format))
	if err != nil {
		return nil, err
	}
	dataset, err := s.Dataset(ctx, job.Type, job.StudentID)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}

	relPath, err := s.files.Save(s.filename(job, renderer.Extension()), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.DownloadURL(token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// DownloadURL is the API path serving a signed token.
func (s *ExportService) DownloadURL(token string) string {
	return fmt.Sprintf("%s/reports/download/%s", s.cfg.APIPrefix, token)
}

// Verify validates a download token. An expired token still returns its grant.
func (s *ExportService) Verify(token string) (storage.Grant, error) {
	return s.signer.Verify(token)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.files.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.files.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.files.Prune(ttl)
}

func (s *ExportService) filename(job models.ReportJob, ext string) string {
	scope := "todos"
	if job.StudentID != "" {
		scope = strings.NewReplacer("/", "-", "\\", "-", "..", ".", " ", "_").Replace(job.StudentID)
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", job.Type, scope, s.now().UTC().Format("20060102_150405"), job.ID, ext)
}

// Dataset builds the tabular content of a report, optionally scoped to one student.
func (s *ExportService) Dataset(ctx context.Context, reportType models.ReportType, studentID string) (export.Dataset, error) {
	var (
		ds  export.Dataset
		err error
	)
	switch reportType {
	case models.ReportTypeSessions:
		ds, err = s.sessionsDataset(ctx, studentID)
	case models.ReportTypeMood:
		ds, err = s.moodDataset(ctx, studentID)
	case models.ReportTypeRisk:
		ds = s.riskDataset(studentID)
	case models.ReportTypeSummary:
		ds, err = s.summaryDataset(ctx, studentID)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %q", reportType)
	}
	if err != nil {
		return export.Dataset{}, err
	}
	ds.Subtitle = fmt.Sprintf("Generado %s", s.now().UTC().Format("2006-01-02 15:04"))
	if studentID != "" {
		ds.Subtitle += " - " + studentID
	}
	return ds, nil
}

func (s *ExportService) studentName(studentID string) string {
	if st, ok := s.store.FindStudent(studentID); ok {
		return st.Name
	}
	return studentID
}

func (s *ExportService) sessionsDataset(ctx context.Context, studentID string) (export.Dataset, error) {
	sessions, err := s.store.Sessions.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	headers := []string{"ID", "Estudiante", "Nombre", "Psicólogo", "Tipo", "Fecha", "Hora", "Duración", "Estado"}
	rows := lo.Map(sessions, func(ses models.Session, _ int) map[string]string {
		return map[string]string{
			"ID":         ses.ID,
			"Estudiante": ses.StudentID,
			"Nombre":     s.studentName(ses.StudentID),
			"Psicólogo":  ses.PsychologistID,
			"Tipo":       ses.Type,
			"Fecha":      ses.Date,
			"Hora":       ses.Time,
			"Duración":   ses.Duration,
			"Estado":     string(ses.Status),
		}
	})
	return export.Dataset{Title: "Reporte de Sesiones", Headers: headers, Rows: rows}, nil
}

func (s *ExportService) moodDataset(ctx context.Context, studentID string) (export.Dataset, error) {
	entries, err := s.store.MoodEntries.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	headers := []string{"Estudiante", "Nombre", "Fecha", "Estado de Ánimo", "Comentario"}
	rows := lo.Map(entries, func(m models.MoodEntry, _ int) map[string]string {
		return map[string]string{
			"Estudiante":      m.StudentID,
			"Nombre":          s.studentName(m.StudentID),
			"Fecha":           m.Date,
			"Estado de Ánimo": strconv.Itoa(m.Mood),
			"Comentario":      m.Comment,
		}
	})
	return export.Dataset{Title: "Reporte de Estado de Ánimo", Headers: headers, Rows: rows}, nil
}

func (s *ExportService) riskDataset(studentID string) export.Dataset {
	students := s.store.Students()
	if studentID != "" {
		students = lo.Filter(students, func(st models.Student, _ int) bool { return st.StudentID == studentID })
	}
	headers := []string{"Estudiante", "Nombre", "Programa", "Semestre", "Riesgo", "Ánimo Actual", "Tendencia"}
	rows := lo.Map(students, func(st models.Student, _ int) map[string]string {
		return map[string]string{
			"Estudiante":   st.StudentID,
			"Nombre":       st.Name,
			"Programa":     st.Program,
			"Semestre":     st.Semester,
			"Riesgo":       string(st.Risk),
			"Ánimo Actual": strconv.Itoa(st.CurrentMood),
			"Tendencia":    string(st.MoodTrend),
		}
	})
	return export.Dataset{Title: "Reporte de Riesgo", Headers: headers, Rows: rows}
}

func (s *ExportService) summaryDataset(ctx context.Context, studentID string) (export.Dataset, error) {
	sessions, err := s.store.Sessions.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	moods, err := s.store.MoodEntries.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	tasks, err := s.store.Tasks.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	plans, err := s.store.SupportPlans.List(ctx, studentID)
	if err != nil {
		return export.Dataset{}, err
	}
	students := s.store.Students()
	if studentID != "" {
		students = lo.Filter(students, func(st models.Student, _ int) bool { return st.StudentID == studentID })
	}

	sessionsBy := lo.CountValuesBy(sessions, func(ses models.Session) models.SessionStatus { return ses.Status })
	counts := countTasks(tasks)
	risk := riskDistribution(students)
	mood := SummarizeMoods(moods)
	activePlans := lo.CountBy(plans, func(p models.SupportPlan) bool { return p.Status == models.PlanActive })

	metric := func(name, value string) map[string]string {
		return map[string]string{"Indicador": name, "Valor": value}
	}
	rows := []map[string]string{
		metric("Estudiantes", strconv.Itoa(len(students))),
		metric("Riesgo alto", strconv.Itoa(risk.High)),
		metric("Riesgo medio", strconv.Itoa(risk.Medium)),
		metric("Riesgo bajo", strconv.Itoa(risk.Low)),
		metric("Sesiones pendientes", strconv.Itoa(sessionsBy[models.SessionPending])),
		metric("Sesiones completadas", strconv.Itoa(sessionsBy[models.SessionCompleted])),
		metric("Sesiones canceladas", strconv.Itoa(sessionsBy[models.SessionCancelled])),
		metric("Tareas pendientes", strconv.Itoa(counts.Pending)),
		metric("Tareas completadas", strconv.Itoa(counts.Completed)),
		metric("Registros de ánimo", strconv.Itoa(mood.Count)),
		metric("Ánimo promedio", strconv.FormatFloat(mood.Average, 'f', 1, 64)),
		metric("Planes activos", strconv.Itoa(activePlans)),
	}
	return export.Dataset{Title: "Resumen General", Headers: []string{"Indicador", "Valor"}, Rows: rows}, nil
}
