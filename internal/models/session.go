package models

import "time"

// SessionStatus tracks the lifecycle of a psychology session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsValid reports whether the status is known.
func (s SessionStatus) IsValid() bool {
	return s == SessionPending || s == SessionCompleted || s == SessionCancelled
}

// CanTransition allows pending -> completed|cancelled only.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	if s == to {
		return true
	}
	return s == SessionPending && (to == SessionCompleted || to == SessionCancelled)
}

// Session is a psychology appointment between a psychologist and a student.
type Session struct {
	ID             string        `json:"id"`
	StudentID      string        `json:"studentId"`
	PsychologistID string        `json:"psychologistId"`
	Type           string        `json:"type"`
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Duration       string        `json:"duration"`
	Location       string        `json:"location"`
	Notes          string        `json:"notes"`
	Status         SessionStatus `json:"status"`
	CreatedAt      int64         `json:"createdAt"`
	SessionNotes   string        `json:"sessionNotes,omitempty"`
	Agreements     []string      `json:"agreements,omitempty"`
	StudentMood    *int          `json:"studentMood,omitempty"`
	Observations   string        `json:"observations,omitempty"`
}

func (s Session) RecordID() string { return s.ID }
func (s Session) OwnerID() string  { return s.StudentID }

// Stamp assigns the identifier and creation time.
func (s *Session) Stamp(id string, at time.Time) {
	s.ID = id
	s.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (s Session) CreatedAtMillis() int64 { return s.CreatedAt }
