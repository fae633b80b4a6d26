package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

// StudentService serves the static roster and the per-student detail page.
type StudentService struct {
	store  *repository.DataStore
	logger *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(store *repository.DataStore, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, logger: logger}
}

// List returns roster entries matching filter.
func (s *StudentService) List(filter models.StudentFilter) []models.Student {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return lo.Filter(s.store.Students(), func(st models.Student, _ int) bool {
		if filter.Risk != "" && st.Risk != filter.Risk {
			return false
		}
		if filter.Program != "" && !strings.EqualFold(st.Program, filter.Program) {
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(st.Name), search) ||
			strings.Contains(strings.ToLower(st.StudentID), search)
	})
}

// Get returns one roster entry.
func (s *StudentService) Get(studentID string) (models.Student, error) {
	st, ok := s.store.FindStudent(studentID)
	if !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return st, nil
}

// Profile gathers every record kept about a student.
func (s *StudentService) Profile(ctx context.Context, actor models.Actor, studentID string) (*dto.StudentProfile, error) {
	if err := ensureStudentAccess(actor, studentID); err != nil {
		return nil, err
	}
	st, err := s.Get(studentID)
	if err != nil {
		return nil, err
	}

	profile := &dto.StudentProfile{Student: st}
	if profile.MoodEntries, err = s.store.MoodEntries.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list mood entries")
	}
	if profile.Sessions, err = s.store.Sessions.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list sessions")
	}
	if profile.Tasks, err = s.store.Tasks.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list tasks")
	}
	if profile.Tutoring, err = s.store.TutoringSessions.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list tutoring sessions")
	}
	if profile.PsychopedagogySessions, err = s.store.PsychopedagogySessions.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list psychopedagogy sessions")
	}
	if profile.SupportPlans, err = s.store.SupportPlans.List(ctx, studentID); err != nil {
		return nil, storeError(err, "list support plans")
	}
	profile.Mood = SummarizeMoods(profile.MoodEntries)
	return profile, nil
}
