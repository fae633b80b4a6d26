package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// MoodHandler exposes mood tracking.
type MoodHandler struct {
	service *service.MoodService
}

// NewMoodHandler constructs handler.
func NewMoodHandler(svc *service.MoodService) *MoodHandler {
	return &MoodHandler{service: svc}
}

// List godoc
// @Summary Mood history
// @Description Students get their own history; staff pass studentId
// @Tags Moods
// @Produce json
// @Param studentId query string false "Student code (staff only)"
// @Success 200 {object} response.Envelope
// @Router /student/moods [get]
func (h *MoodHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	studentID := studentScope(c, actor)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	entries, err := h.service.List(c.Request.Context(), actor, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// Summary godoc
// @Summary Mood average and trend
// @Tags Moods
// @Produce json
// @Param studentId query string false "Student code (staff only)"
// @Success 200 {object} response.Envelope
// @Router /student/moods/summary [get]
func (h *MoodHandler) Summary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	studentID := studentScope(c, actor)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), actor, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Record godoc
// @Summary Record mood
// @Tags Moods
// @Accept json
// @Produce json
// @Param payload body service.RecordMoodRequest true "Mood payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/moods [post]
func (h *MoodHandler) Record(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.RecordMoodRequest
	if !bindJSON(c, &req, "mood") {
		return
	}
	entry, err := h.service.Record(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}
