package dto

import "github.com/noah-isme/wellness-api/internal/models"

// ReportRequest captures POST /reports payload.
type ReportRequest struct {
	Type      models.ReportType   `json:"type" validate:"required,oneof=sessions mood risk summary"`
	Format    models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	StudentID string              `json:"studentId,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID           string              `json:"id"`
	Type         models.ReportType   `json:"type"`
	Format       models.ReportFormat `json:"format"`
	Status       models.ReportStatus `json:"status"`
	Progress     int                 `json:"progress"`
	DownloadURL  string              `json:"downloadUrl,omitempty"`
	ErrorMessage string              `json:"error,omitempty"`
	CreatedAt    int64               `json:"createdAt"`
	FinishedAt   int64               `json:"finishedAt,omitempty"`
}
