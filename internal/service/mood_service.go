package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type moodStore interface {
	List(ctx context.Context, key string) ([]models.MoodEntry, error)
	Add(ctx context.Context, rec models.MoodEntry) (models.MoodEntry, error)
}

// RecordMoodRequest is submitted from the student mood page.
type RecordMoodRequest struct {
	Mood    int    `json:"mood" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// MoodService records and summarises self-reported moods. Entries are append-only.
type MoodService struct {
	repo      moodStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMoodService constructs the mood service.
func NewMoodService(repo moodStore, validate *validator.Validate, logger *zap.Logger) *MoodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoodService{repo: repo, validator: validate, logger: logger}
}

// List returns the mood history of studentID in insertion order.
func (s *MoodService) List(ctx context.Context, actor models.Actor, studentID string) ([]models.MoodEntry, error) {
	if err := ensureStudentAccess(actor, studentID); err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list mood entries")
	}
	return entries, nil
}

// Record appends a mood entry for the calling student.
func (s *MoodService) Record(ctx context.Context, actor models.Actor, req RecordMoodRequest) (*models.MoodEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "mood")
	}
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students record moods")
	}
	entry, err := s.repo.Add(ctx, models.MoodEntry{StudentID: actor.UserID, Mood: req.Mood, Comment: req.Comment})
	if err != nil {
		return nil, storeError(err, "record mood")
	}
	s.logger.Debug("mood recorded", zap.String("student_id", actor.UserID), zap.Int("mood", req.Mood))
	return &entry, nil
}

// Summary returns the aggregate view of a student's moods.
func (s *MoodService) Summary(ctx context.Context, actor models.Actor, studentID string) (dto.MoodSummary, error) {
	entries, err := s.List(ctx, actor, studentID)
	if err != nil {
		return dto.MoodSummary{}, err
	}
	return SummarizeMoods(entries), nil
}

// moodTrendWindow is how many recent entries are compared with the ones before.
const moodTrendWindow = 3

// SummarizeMoods computes average and trend. The trend compares the mean of
// the latest window with the window before it.
func SummarizeMoods(entries []models.MoodEntry) dto.MoodSummary {
	summary := dto.MoodSummary{Count: len(entries), Trend: models.TrendStable}
	if len(entries) == 0 {
		return summary
	}
	latest := entries[len(entries)-1]
	summary.Latest = &latest
	summary.Average = round1(meanMood(entries))

	if len(entries) < 2 {
		return summary
	}
	split := len(entries) - moodTrendWindow
	if split < 1 {
		split = len(entries) - 1
	}
	start := split - moodTrendWindow
	if start < 0 {
		start = 0
	}
	diff := meanMood(entries[split:]) - meanMood(entries[start:split])
	switch {
	case diff >= 0.5:
		summary.Trend = models.TrendUp
	case diff <= -0.5:
		summary.Trend = models.TrendDown
	}
	return summary
}

func meanMood(entries []models.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := lo.SumBy(entries, func(e models.MoodEntry) int { return e.Mood })
	return float64(total) / float64(len(entries))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
