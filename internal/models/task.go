package models

import "time"

// TaskStatus is either pending or completed.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// IsValid reports whether the status is known.
func (s TaskStatus) IsValid() bool {
	return s == TaskPending || s == TaskCompleted
}

// Toggle flips between pending and completed.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskCompleted {
		return TaskPending
	}
	return TaskCompleted
}

// Task is homework assigned to a student by a psychologist.
type Task struct {
	ID                 string     `json:"id"`
	StudentID          string     `json:"studentId"`
	Task               string     `json:"task"`
	AssignedBy         string     `json:"assignedBy"`
	AssignedDate       string     `json:"assignedDate"`
	DueDate            string     `json:"dueDate"`
	Status             TaskStatus `json:"status"`
	CreatedAt          int64      `json:"createdAt"`
	SessionID          string     `json:"sessionId,omitempty"`
	Feedback           string     `json:"feedback,omitempty"`
	FeedbackDate       string     `json:"feedbackDate,omitempty"`
	CompletedDate      string     `json:"completedDate,omitempty"`
	StudentComment     string     `json:"studentComment,omitempty"`
	StudentCommentDate string     `json:"studentCommentDate,omitempty"`
}

func (t Task) RecordID() string { return t.ID }
func (t Task) OwnerID() string  { return t.StudentID }

// Stamp assigns the identifier and creation time.
func (t *Task) Stamp(id string, at time.Time) {
	t.ID = id
	t.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (t Task) CreatedAtMillis() int64 { return t.CreatedAt }

// Task fields that depend on the completed state.
const (
	TaskFieldStatus        = "status"
	TaskFieldCompletedDate = "completedDate"
	TaskFieldFeedback      = "feedback"
	TaskFieldFeedbackDate  = "feedbackDate"
)
