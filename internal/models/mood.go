package models

import "time"

// MoodEntry is a self-reported emotional state on a 1-5 scale.
type MoodEntry struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Mood      int    `json:"mood"`
	Comment   string `json:"comment"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

func (m MoodEntry) RecordID() string { return m.ID }
func (m MoodEntry) OwnerID() string  { return m.StudentID }

// Stamp assigns the identifier and timestamp on creation.
func (m *MoodEntry) Stamp(id string, at time.Time) {
	m.ID = id
	m.Timestamp = Millis(at)
	if m.Date == "" {
		m.Date = at.UTC().Format(time.RFC3339)
	}
}

// CreatedAtMillis returns the creation timestamp.
func (m MoodEntry) CreatedAtMillis() int64 { return m.Timestamp }
