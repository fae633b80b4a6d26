package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

// CreatePsychopedagogyReferralRequest refers a student to psychopedagogy.
type CreatePsychopedagogyReferralRequest struct {
	StudentID             string         `json:"studentId" validate:"required"`
	Reason                string         `json:"reason" validate:"required"`
	Concerns              []string       `json:"concerns"`
	AcademicImpact        string         `json:"academicImpact"`
	PreviousInterventions string         `json:"previousInterventions"`
	Urgency               models.Urgency `json:"urgency" validate:"required,oneof=high medium low"`
}

// AdvancePsychopedagogyReferralRequest moves a referral forward.
type AdvancePsychopedagogyReferralRequest struct {
	Status models.PsychopedagogyReferralStatus `json:"status" validate:"required,oneof=pending accepted in_evaluation completed"`
}

// SchedulePsychopedagogySessionRequest books an evaluation or follow-up.
type SchedulePsychopedagogySessionRequest struct {
	StudentID  string                           `json:"studentId" validate:"required"`
	Date       string                           `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string                           `json:"time" validate:"required,datetime=15:04"`
	Duration   string                           `json:"duration"`
	Type       models.PsychopedagogySessionType `json:"type" validate:"required,oneof=evaluation follow-up intervention"`
	Objectives string                           `json:"objectives" validate:"required"`
	Activities string                           `json:"activities"`
}

// CompletePsychopedagogySessionRequest fills the outcome fields.
type CompletePsychopedagogySessionRequest struct {
	Observations string `json:"observations" validate:"required"`
	Progress     string `json:"progress"`
	NextSteps    string `json:"nextSteps"`
}

// SupportPlanRequest creates a support plan.
type SupportPlanRequest struct {
	StudentID          string                      `json:"studentId" validate:"required"`
	Difficulties       []models.LearningDifficulty `json:"difficulties" validate:"dive"`
	GeneralObjectives  string                      `json:"generalObjectives" validate:"required"`
	SpecificObjectives []string                    `json:"specificObjectives"`
	Strategies         []string                    `json:"strategies"`
	Recommendations    []string                    `json:"recommendations"`
	EvaluationCriteria string                      `json:"evaluationCriteria"`
	ReviewDate         string                      `json:"reviewDate" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateSupportPlanRequest edits a plan. Nil fields are left untouched.
type UpdateSupportPlanRequest struct {
	Difficulties       []models.LearningDifficulty `json:"difficulties" validate:"omitempty,dive"`
	GeneralObjectives  *string                     `json:"generalObjectives"`
	SpecificObjectives []string                    `json:"specificObjectives"`
	Strategies         []string                    `json:"strategies"`
	Recommendations    []string                    `json:"recommendations"`
	EvaluationCriteria *string                     `json:"evaluationCriteria"`
	ReviewDate         *string                     `json:"reviewDate" validate:"omitempty,datetime=2006-01-02"`
	Status             models.PlanStatus           `json:"status" validate:"omitempty,oneof=active completed suspended"`
}

// PsychopedagogyService covers referrals, sessions and support plans of the
// psychopedagogue role.
type PsychopedagogyService struct {
	referrals recordStore[models.PsychopedagogyReferral]
	sessions  recordStore[models.PsychopedagogySession]
	plans     recordStore[models.SupportPlan]
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPsychopedagogyService constructs the psychopedagogy service.
func NewPsychopedagogyService(
	referrals recordStore[models.PsychopedagogyReferral],
	sessions recordStore[models.PsychopedagogySession],
	plans recordStore[models.SupportPlan],
	validate *validator.Validate,
	logger *zap.Logger,
) *PsychopedagogyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PsychopedagogyService{
		referrals: referrals,
		sessions:  sessions,
		plans:     plans,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// ListReferrals returns referrals filtered by student and status.
func (s *PsychopedagogyService) ListReferrals(ctx context.Context, studentID string, status models.PsychopedagogyReferralStatus) ([]models.PsychopedagogyReferral, error) {
	refs, err := s.referrals.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list psychopedagogy referrals")
	}
	if status == "" {
		return refs, nil
	}
	return lo.Filter(refs, func(r models.PsychopedagogyReferral, _ int) bool { return r.Status == status }), nil
}

// CreateReferral files a pending referral from a psychologist or tutor.
func (s *PsychopedagogyService) CreateReferral(ctx context.Context, actor models.Actor, req CreatePsychopedagogyReferralRequest) (*models.PsychopedagogyReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "psychopedagogy referral")
	}
	var role models.ReferrerRole
	switch actor.Role {
	case models.RolePsychologist:
		role = models.ReferrerPsychologist
	case models.RoleTutor:
		role = models.ReferrerTutor
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only psychologists and tutors refer to psychopedagogy")
	}
	ref, err := s.referrals.Add(ctx, models.PsychopedagogyReferral{
		StudentID:             req.StudentID,
		ReferredBy:            actor.UserID,
		ReferrerRole:          role,
		Reason:                req.Reason,
		Concerns:              lo.Ternary(req.Concerns == nil, []string{}, req.Concerns),
		AcademicImpact:        req.AcademicImpact,
		PreviousInterventions: req.PreviousInterventions,
		Urgency:               req.Urgency,
		Date:                  models.DateOnly(s.now()),
		Status:                models.PsychopedagogyReferralPending,
	})
	if err != nil {
		return nil, storeError(err, "create psychopedagogy referral")
	}
	return &ref, nil
}

// AcceptReferral accepts a pending referral and assigns the caller.
func (s *PsychopedagogyService) AcceptReferral(ctx context.Context, actor models.Actor, id string) (*models.PsychopedagogyReferral, error) {
	return s.advanceReferral(ctx, id, models.PsychopedagogyReferralAccepted, models.Patch{
		"status":                  models.PsychopedagogyReferralAccepted,
		"assignedPsychopedagogue": actor.Email,
	})
}

// AdvanceReferral moves a referral to a later status.
func (s *PsychopedagogyService) AdvanceReferral(ctx context.Context, id string, req AdvancePsychopedagogyReferralRequest) (*models.PsychopedagogyReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "psychopedagogy referral status")
	}
	return s.advanceReferral(ctx, id, req.Status, models.Patch{"status": req.Status})
}

func (s *PsychopedagogyService) advanceReferral(ctx context.Context, id string, to models.PsychopedagogyReferralStatus, patch models.Patch) (*models.PsychopedagogyReferral, error) {
	current, err := findRecord(ctx, s.referrals, id, "psychopedagogy referral")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(to) {
		return nil, invalidTransition("psychopedagogy referral", string(current.Status), string(to))
	}
	updated, err := updateRecord(ctx, s.referrals, id, patch, "psychopedagogy referral")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListSessions returns psychopedagogy sessions filtered by student and status.
func (s *PsychopedagogyService) ListSessions(ctx context.Context, actor models.Actor, studentID string, status models.ScheduleStatus) ([]models.PsychopedagogySession, error) {
	if actor.Role == models.RoleStudent {
		studentID = actor.UserID
	}
	sessions, err := s.sessions.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list psychopedagogy sessions")
	}
	if status == "" {
		return sessions, nil
	}
	return lo.Filter(sessions, func(ps models.PsychopedagogySession, _ int) bool { return ps.Status == status }), nil
}

// ScheduleSession books a session for the calling psychopedagogue.
func (s *PsychopedagogyService) ScheduleSession(ctx context.Context, actor models.Actor, req SchedulePsychopedagogySessionRequest) (*models.PsychopedagogySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "psychopedagogy session")
	}
	if req.Duration == "" {
		req.Duration = "60 min"
	}
	session, err := s.sessions.Add(ctx, models.PsychopedagogySession{
		StudentID:         req.StudentID,
		PsychopedagogueID: actor.UserID,
		Date:              req.Date,
		Time:              req.Time,
		Duration:          req.Duration,
		Type:              req.Type,
		Objectives:        req.Objectives,
		Activities:        req.Activities,
		Status:            models.ScheduleScheduled,
	})
	if err != nil {
		return nil, storeError(err, "schedule psychopedagogy session")
	}
	return &session, nil
}

// CompleteSession fills observations, progress and next steps.
func (s *PsychopedagogyService) CompleteSession(ctx context.Context, id string, req CompletePsychopedagogySessionRequest) (*models.PsychopedagogySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "psychopedagogy session completion")
	}
	return s.transitionSession(ctx, id, models.ScheduleCompleted, models.Patch{
		"status":       models.ScheduleCompleted,
		"observations": req.Observations,
		"progress":     req.Progress,
		"nextSteps":    req.NextSteps,
	})
}

// CancelSession cancels a scheduled session.
func (s *PsychopedagogyService) CancelSession(ctx context.Context, id string) (*models.PsychopedagogySession, error) {
	return s.transitionSession(ctx, id, models.ScheduleCancelled, models.Patch{"status": models.ScheduleCancelled})
}

func (s *PsychopedagogyService) transitionSession(ctx context.Context, id string, to models.ScheduleStatus, patch models.Patch) (*models.PsychopedagogySession, error) {
	current, err := findRecord(ctx, s.sessions, id, "psychopedagogy session")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(to) {
		return nil, invalidTransition("psychopedagogy session", string(current.Status), string(to))
	}
	updated, err := updateRecord(ctx, s.sessions, id, patch, "psychopedagogy session")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListPlans returns support plans, optionally for one student.
func (s *PsychopedagogyService) ListPlans(ctx context.Context, actor models.Actor, studentID string) ([]models.SupportPlan, error) {
	if actor.Role == models.RoleStudent {
		studentID = actor.UserID
	}
	plans, err := s.plans.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list support plans")
	}
	return plans, nil
}

// CreatePlan stores an active plan. A student holds at most one active plan.
func (s *PsychopedagogyService) CreatePlan(ctx context.Context, actor models.Actor, req SupportPlanRequest) (*models.SupportPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "support plan")
	}
	plan, err := s.plans.Add(ctx, models.SupportPlan{
		StudentID:          req.StudentID,
		PsychopedagogueID:  actor.UserID,
		Difficulties:       lo.Ternary(req.Difficulties == nil, []models.LearningDifficulty{}, req.Difficulties),
		GeneralObjectives:  req.GeneralObjectives,
		SpecificObjectives: lo.Ternary(req.SpecificObjectives == nil, []string{}, req.SpecificObjectives),
		Strategies:         lo.Ternary(req.Strategies == nil, []string{}, req.Strategies),
		Recommendations:    lo.Ternary(req.Recommendations == nil, []string{}, req.Recommendations),
		EvaluationCriteria: req.EvaluationCriteria,
		ReviewDate:         req.ReviewDate,
		Status:             models.PlanActive,
	})
	if err != nil {
		return nil, storeError(err, "create support plan")
	}
	s.logger.Info("support plan created", zap.String("plan_id", plan.ID), zap.String("student_id", plan.StudentID))
	return &plan, nil
}

// UpdatePlan applies the provided fields to a plan.
func (s *PsychopedagogyService) UpdatePlan(ctx context.Context, id string, req UpdateSupportPlanRequest) (*models.SupportPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "support plan")
	}
	patch := models.Patch{}
	if req.Difficulties != nil {
		patch["difficulties"] = req.Difficulties
	}
	if req.GeneralObjectives != nil {
		patch["generalObjectives"] = *req.GeneralObjectives
	}
	if req.SpecificObjectives != nil {
		patch["specificObjectives"] = req.SpecificObjectives
	}
	if req.Strategies != nil {
		patch["strategies"] = req.Strategies
	}
	if req.Recommendations != nil {
		patch["recommendations"] = req.Recommendations
	}
	if req.EvaluationCriteria != nil {
		patch["evaluationCriteria"] = *req.EvaluationCriteria
	}
	if req.ReviewDate != nil {
		patch["reviewDate"] = *req.ReviewDate
	}
	if req.Status != "" {
		patch["status"] = req.Status
	}
	if len(patch) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	updated, err := updateRecord(ctx, s.plans, id, patch, "support plan")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
