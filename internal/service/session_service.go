package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type sessionStore interface {
	recordStore[models.Session]
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateSessionRequest schedules a psychology session.
type CreateSessionRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
	Duration  string `json:"duration"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
}

// CompleteSessionRequest closes a session with its clinical notes.
type CompleteSessionRequest struct {
	SessionNotes string   `json:"sessionNotes" validate:"required"`
	Agreements   []string `json:"agreements"`
	StudentMood  *int     `json:"studentMood" validate:"omitempty,min=1,max=5"`
	Observations string   `json:"observations"`
}

// RescheduleSessionRequest moves a pending session.
type RescheduleSessionRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// SessionService manages psychology sessions.
type SessionService struct {
	repo      sessionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the psychology session service.
func NewSessionService(repo sessionStore, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// List returns sessions, all of them when studentID is empty.
func (s *SessionService) List(ctx context.Context, actor models.Actor, studentID string) ([]models.Session, error) {
	if actor.Role == models.RoleStudent {
		studentID = actor.UserID
	}
	sessions, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list sessions")
	}
	return sessions, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, actor models.Actor, id string) (*models.Session, error) {
	session, err := findRecord[models.Session](ctx, s.repo, id, "session")
	if err != nil {
		return nil, err
	}
	if err := ensureStudentAccess(actor, session.StudentID); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create schedules a pending session led by the calling psychologist.
func (s *SessionService) Create(ctx context.Context, actor models.Actor, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "session")
	}
	if req.Duration == "" {
		req.Duration = "60 min"
	}
	session, err := s.repo.Add(ctx, models.Session{
		StudentID:      req.StudentID,
		PsychologistID: actor.UserID,
		Type:           req.Type,
		Date:           req.Date,
		Time:           req.Time,
		Duration:       req.Duration,
		Location:       req.Location,
		Notes:          req.Notes,
		Status:         models.SessionPending,
	})
	if err != nil {
		return nil, storeError(err, "create session")
	}
	s.logger.Info("session scheduled", zap.String("session_id", session.ID), zap.String("student_id", session.StudentID))
	return &session, nil
}

// Reschedule changes date and time of a pending session.
func (s *SessionService) Reschedule(ctx context.Context, id string, req RescheduleSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "session")
	}
	current, err := findRecord[models.Session](ctx, s.repo, id, "session")
	if err != nil {
		return nil, err
	}
	if current.Status != models.SessionPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending sessions can be rescheduled")
	}
	patch := models.Patch{"date": req.Date, "time": req.Time}
	if req.Location != "" {
		patch["location"] = req.Location
	}
	if req.Notes != "" {
		patch["notes"] = req.Notes
	}
	updated, err := updateRecord[models.Session](ctx, s.repo, id, patch, "session")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Complete records the outcome of a pending session.
func (s *SessionService) Complete(ctx context.Context, id string, req CompleteSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "session completion")
	}
	patch := models.Patch{
		"status":       models.SessionCompleted,
		"sessionNotes": req.SessionNotes,
		"observations": req.Observations,
	}
	if req.Agreements != nil {
		patch["agreements"] = req.Agreements
	}
	if req.StudentMood != nil {
		patch["studentMood"] = *req.StudentMood
	}
	return s.transition(ctx, id, models.SessionCompleted, patch)
}

// Cancel cancels a pending session.
func (s *SessionService) Cancel(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionCancelled, models.Patch{"status": models.SessionCancelled})
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "delete session")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return nil
}

func (s *SessionService) transition(ctx context.Context, id string, to models.SessionStatus, patch models.Patch) (*models.Session, error) {
	current, err := findRecord[models.Session](ctx, s.repo, id, "session")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(to) {
		return nil, invalidTransition("session", string(current.Status), string(to))
	}
	updated, err := updateRecord[models.Session](ctx, s.repo, id, patch, "session")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
