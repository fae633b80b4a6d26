package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
)

// ScheduleTutoringRequest creates a tutoring session.
type ScheduleTutoringRequest struct {
	StudentID string              `json:"studentId" validate:"required"`
	Topic     string              `json:"topic" validate:"required"`
	Type      models.TutoringType `json:"type" validate:"required,oneof=academic personal career study_skills"`
	Date      string              `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string              `json:"time" validate:"required,datetime=15:04"`
	Duration  string              `json:"duration"`
	Location  string              `json:"location"`
	Notes     string              `json:"notes"`
}

// CompleteTutoringRequest closes a session with attendance.
type CompleteTutoringRequest struct {
	Attendance models.Attendance `json:"attendance" validate:"omitempty,oneof=present absent justified"`
	Notes      string            `json:"notes"`
}

// TutoringService manages tutoring sessions.
type TutoringService struct {
	repo      recordStore[models.Tutoring]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTutoringService constructs the tutoring service.
func NewTutoringService(repo recordStore[models.Tutoring], validate *validator.Validate, logger *zap.Logger) *TutoringService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutoringService{repo: repo, validator: validate, logger: logger}
}

// List returns tutoring sessions for studentID; tutors only see their own.
func (s *TutoringService) List(ctx context.Context, actor models.Actor, studentID string) ([]models.Tutoring, error) {
	if actor.Role == models.RoleStudent {
		studentID = actor.UserID
	}
	sessions, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list tutoring sessions")
	}
	if actor.Role == models.RoleTutor {
		sessions = lo.Filter(sessions, func(t models.Tutoring, _ int) bool { return t.TutorID == actor.UserID })
	}
	return sessions, nil
}

// Schedule books a session for the calling tutor.
func (s *TutoringService) Schedule(ctx context.Context, actor models.Actor, req ScheduleTutoringRequest) (*models.Tutoring, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "tutoring")
	}
	if req.Duration == "" {
		req.Duration = "60 min"
	}
	t, err := s.repo.Add(ctx, models.Tutoring{
		StudentID:  req.StudentID,
		TutorID:    actor.UserID,
		Topic:      req.Topic,
		Type:       req.Type,
		Date:       req.Date,
		Time:       req.Time,
		Duration:   req.Duration,
		Location:   req.Location,
		Notes:      req.Notes,
		Attendance: models.AttendancePresent,
		Status:     models.ScheduleScheduled,
	})
	if err != nil {
		return nil, storeError(err, "schedule tutoring")
	}
	return &t, nil
}

// Complete marks a scheduled session as held.
func (s *TutoringService) Complete(ctx context.Context, id string, req CompleteTutoringRequest) (*models.Tutoring, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "tutoring completion")
	}
	patch := models.Patch{"status": models.ScheduleCompleted}
	if req.Attendance != "" {
		patch["attendance"] = req.Attendance
	}
	if req.Notes != "" {
		patch["notes"] = req.Notes
	}
	return s.transition(ctx, id, models.ScheduleCompleted, patch)
}

// Cancel cancels a scheduled session.
func (s *TutoringService) Cancel(ctx context.Context, id string) (*models.Tutoring, error) {
	return s.transition(ctx, id, models.ScheduleCancelled, models.Patch{"status": models.ScheduleCancelled})
}

func (s *TutoringService) transition(ctx context.Context, id string, to models.ScheduleStatus, patch models.Patch) (*models.Tutoring, error) {
	current, err := findRecord(ctx, s.repo, id, "tutoring session")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(to) {
		return nil, invalidTransition("tutoring session", string(current.Status), string(to))
	}
	updated, err := updateRecord(ctx, s.repo, id, patch, "tutoring session")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
