package models

import "time"

// TutoringType classifies a tutoring session.
type TutoringType string

const (
	TutoringAcademic    TutoringType = "academic"
	TutoringPersonal    TutoringType = "personal"
	TutoringCareer      TutoringType = "career"
	TutoringStudySkills TutoringType = "study_skills"
)

// Attendance records whether the student showed up.
type Attendance string

const (
	AttendancePresent   Attendance = "present"
	AttendanceAbsent    Attendance = "absent"
	AttendanceJustified Attendance = "justified"
)

// ScheduleStatus tracks tutoring and psychopedagogy sessions.
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// IsValid reports whether the status is known.
func (s ScheduleStatus) IsValid() bool {
	return s == ScheduleScheduled || s == ScheduleCompleted || s == ScheduleCancelled
}

// CanTransition allows scheduled -> completed|cancelled only.
func (s ScheduleStatus) CanTransition(to ScheduleStatus) bool {
	if s == to {
		return true
	}
	return s == ScheduleScheduled && (to == ScheduleCompleted || to == ScheduleCancelled)
}

// Tutoring is a session held by a tutor with a student.
type Tutoring struct {
	ID         string         `json:"id"`
	StudentID  string         `json:"studentId"`
	TutorID    string         `json:"tutorId"`
	Topic      string         `json:"topic"`
	Type       TutoringType   `json:"type"`
	Date       string         `json:"date"`
	Time       string         `json:"time"`
	Duration   string         `json:"duration"`
	Location   string         `json:"location"`
	Notes      string         `json:"notes"`
	Attendance Attendance     `json:"attendance"`
	Status     ScheduleStatus `json:"status"`
	CreatedAt  int64          `json:"createdAt"`
}

func (t Tutoring) RecordID() string { return t.ID }
func (t Tutoring) OwnerID() string  { return t.StudentID }

// Stamp assigns the identifier and creation time.
func (t *Tutoring) Stamp(id string, at time.Time) {
	t.ID = id
	t.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (t Tutoring) CreatedAtMillis() int64 { return t.CreatedAt }
