package models

import "time"

// ReportType enumerates the exports offered on the admin reports page.
type ReportType string

const (
	ReportTypeSessions ReportType = "sessions"
	ReportTypeMood     ReportType = "mood"
	ReportTypeRisk     ReportType = "risk"
	ReportTypeSummary  ReportType = "summary"
)

// IsValid reports whether the type is supported.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeSessions, ReportTypeMood, ReportTypeRisk, ReportTypeSummary:
		return true
	default:
		return false
	}
}

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// IsValid reports whether the format is supported.
func (f ReportFormat) IsValid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob is persisted in the same store as the wellness collections.
type ReportJob struct {
	ID           string       `json:"id"`
	Type         ReportType   `json:"type"`
	Format       ReportFormat `json:"format"`
	StudentID    string       `json:"studentId,omitempty"`
	Status       ReportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultURL    string       `json:"resultUrl,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    int64        `json:"createdAt"`
	FinishedAt   int64        `json:"finishedAt,omitempty"`
}

func (j ReportJob) RecordID() string { return j.ID }
func (j ReportJob) OwnerID() string  { return j.StudentID }

// Stamp assigns the identifier and creation time.
func (j *ReportJob) Stamp(id string, at time.Time) {
	j.ID = id
	j.CreatedAt = Millis(at)
}

// CreatedAtMillis returns the creation timestamp.
func (j ReportJob) CreatedAtMillis() int64 { return j.CreatedAt }
