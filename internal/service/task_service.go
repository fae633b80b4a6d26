package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type taskStore interface {
	recordStore[models.Task]
	Delete(ctx context.Context, id string) (bool, error)
}

// AssignTaskRequest creates homework for a student.
type AssignTaskRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Task      string `json:"task" validate:"required,max=500"`
	DueDate   string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	SessionID string `json:"sessionId"`
}

// TaskCommentRequest carries the student's note on a task.
type TaskCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
}

// TaskFeedbackRequest carries the psychologist's feedback.
type TaskFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=1000"`
}

// TaskService manages homework between psychologists and students.
type TaskService struct {
	repo      taskStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs the task service.
func NewTaskService(repo taskStore, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns the tasks of a student; students always get their own.
func (s *TaskService) List(ctx context.Context, actor models.Actor, studentID string) ([]models.Task, error) {
	if actor.Role == models.RoleStudent {
		studentID = actor.UserID
	}
	tasks, err := s.repo.List(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "list tasks")
	}
	return tasks, nil
}

// Assign creates a pending task on behalf of the calling psychologist.
func (s *TaskService) Assign(ctx context.Context, actor models.Actor, req AssignTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "task")
	}
	task, err := s.repo.Add(ctx, models.Task{
		StudentID:    req.StudentID,
		Task:         req.Task,
		AssignedBy:   actor.UserID,
		AssignedDate: models.DateOnly(s.now()),
		DueDate:      req.DueDate,
		Status:       models.TaskPending,
		SessionID:    req.SessionID,
	})
	if err != nil {
		return nil, storeError(err, "assign task")
	}
	s.logger.Info("task assigned", zap.String("task_id", task.ID), zap.String("student_id", task.StudentID))
	return &task, nil
}

// Toggle flips a task between pending and completed. Going back to pending
// drops the completion date and any feedback.
func (s *TaskService) Toggle(ctx context.Context, actor models.Actor, id string) (*models.Task, error) {
	task, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	next := task.Status.Toggle()
	patch := models.Patch{models.TaskFieldStatus: next}
	if next == models.TaskCompleted {
		patch[models.TaskFieldCompletedDate] = models.DateOnly(s.now())
	}
	updated, err := updateRecord[models.Task](ctx, s.repo, id, patch, "task")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Comment stores the student's note.
func (s *TaskService) Comment(ctx context.Context, actor models.Actor, id string, req TaskCommentRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "task comment")
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	updated, err := updateRecord[models.Task](ctx, s.repo, id, models.Patch{
		"studentComment":     req.Comment,
		"studentCommentDate": models.DateOnly(s.now()),
	}, "task")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Feedback stores the psychologist's feedback.
func (s *TaskService) Feedback(ctx context.Context, id string, req TaskFeedbackRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "task feedback")
	}
	updated, err := updateRecord[models.Task](ctx, s.repo, id, models.Patch{
		models.TaskFieldFeedback:     req.Feedback,
		models.TaskFieldFeedbackDate: models.DateOnly(s.now()),
	}, "task")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "delete task")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	s.logger.Info("task deleted", zap.String("task_id", id))
	return nil
}

func (s *TaskService) owned(ctx context.Context, actor models.Actor, id string) (models.Task, error) {
	task, err := findRecord[models.Task](ctx, s.repo, id, "task")
	if err != nil {
		return task, err
	}
	if err := ensureStudentAccess(actor, task.StudentID); err != nil {
		return task, err
	}
	return task, nil
}
