package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// TutoringHandler exposes tutor sessions.
type TutoringHandler struct {
	service *service.TutoringService
}

// NewTutoringHandler constructs handler.
func NewTutoringHandler(svc *service.TutoringService) *TutoringHandler {
	return &TutoringHandler{service: svc}
}

// List godoc
// @Summary List tutorings
// @Tags Tutoring
// @Produce json
// @Param studentId query string false "Student code"
// @Success 200 {object} response.Envelope
// @Router /tutor/tutorings [get]
func (h *TutoringHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, studentScope(c, actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Schedule godoc
// @Summary Schedule tutoring
// @Tags Tutoring
// @Accept json
// @Produce json
// @Param payload body service.ScheduleTutoringRequest true "Tutoring payload"
// @Success 201 {object} response.Envelope
// @Router /tutor/tutorings [post]
func (h *TutoringHandler) Schedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.ScheduleTutoringRequest
	if !bindJSON(c, &req, "tutoring") {
		return
	}
	item, err := h.service.Schedule(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Complete godoc
// @Summary Complete tutoring
// @Tags Tutoring
// @Accept json
// @Produce json
// @Param id path string true "Tutoring ID"
// @Param payload body service.CompleteTutoringRequest true "Attendance"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutor/tutorings/{id}/complete [post]
func (h *TutoringHandler) Complete(c *gin.Context) {
	var req service.CompleteTutoringRequest
	if !bindJSON(c, &req, "tutoring") {
		return
	}
	item, err := h.service.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Cancel godoc
// @Summary Cancel tutoring
// @Tags Tutoring
// @Produce json
// @Param id path string true "Tutoring ID"
// @Success 200 {object} response.Envelope
// @Router /tutor/tutorings/{id}/cancel [post]
func (h *TutoringHandler) Cancel(c *gin.Context) {
	item, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}
