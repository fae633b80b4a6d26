package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
)

// CreateReferralRequest refers a student to psychology.
type CreateReferralRequest struct {
	StudentID       string         `json:"studentId" validate:"required"`
	Reason          string         `json:"reason" validate:"required"`
	Urgency         models.Urgency `json:"urgency" validate:"required,oneof=high medium low"`
	Symptoms        []string       `json:"symptoms"`
	PreviousSupport string         `json:"previousSupport"`
	AcademicImpact  string         `json:"academicImpact"`
}

// AdvanceReferralRequest moves a referral forward.
type AdvanceReferralRequest struct {
	Status models.ReferralStatus `json:"status" validate:"required,oneof=pending accepted in_progress completed"`
}

// ReferralService manages psychology referrals.
type ReferralService struct {
	repo      recordStore[models.PsychologyReferral]
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReferralService constructs the psychology referral service.
func NewReferralService(repo recordStore[models.PsychologyReferral], validate *validator.Validate, logger *zap.Logger) *ReferralService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns referrals, optionally for one student and status. Tutors see
// the referrals they made.
func (s *ReferralService) List(ctx context.Context, actor models.Actor, studentID string, status models.ReferralStatus) ([]models.PsychologyReferral, error) {
	refs, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list referrals")
	}
	return lo.Filter(refs, func(r models.PsychologyReferral, _ int) bool {
		if status != "" && r.Status != status {
			return false
		}
		return actor.Role != models.RoleTutor || r.ReferredBy == actor.UserID
	}), nil
}

// Create files a pending referral.
func (s *ReferralService) Create(ctx context.Context, actor models.Actor, req CreateReferralRequest) (*models.PsychologyReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "referral")
	}
	ref, err := s.repo.Add(ctx, models.PsychologyReferral{
		StudentID:       req.StudentID,
		ReferredBy:      actor.UserID,
		Reason:          req.Reason,
		Urgency:         req.Urgency,
		Symptoms:        lo.Ternary(req.Symptoms == nil, []string{}, req.Symptoms),
		PreviousSupport: req.PreviousSupport,
		AcademicImpact:  req.AcademicImpact,
		Date:            models.DateOnly(s.now()),
		Status:          models.ReferralPending,
	})
	if err != nil {
		return nil, storeError(err, "create referral")
	}
	s.logger.Info("referral created", zap.String("referral_id", ref.ID), zap.String("urgency", string(ref.Urgency)))
	return &ref, nil
}

// Advance moves a referral forward. Accepting assigns the calling psychologist.
func (s *ReferralService) Advance(ctx context.Context, actor models.Actor, id string, req AdvanceReferralRequest) (*models.PsychologyReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "referral status")
	}
	current, err := findRecord(ctx, s.repo, id, "referral")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(req.Status) {
		return nil, invalidTransition("referral", string(current.Status), string(req.Status))
	}
	patch := models.Patch{"status": req.Status}
	if req.Status == models.ReferralAccepted && current.AssignedPsychologist == "" {
		patch["assignedPsychologist"] = actor.UserID
	}
	updated, err := updateRecord(ctx, s.repo, id, patch, "referral")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
