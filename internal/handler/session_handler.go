package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// SessionHandler exposes psychology sessions.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Param studentId query string false "Student code"
// @Success 200 {object} response.Envelope
// @Router /psychologist/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessions, err := h.service.List(c.Request.Context(), actor, studentScope(c, actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /psychologist/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	session, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Create godoc
// @Summary Schedule session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /psychologist/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.CreateSessionRequest
	if !bindJSON(c, &req, "session") {
		return
	}
	session, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Reschedule godoc
// @Summary Reschedule a pending session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.RescheduleSessionRequest true "New slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychologist/sessions/{id} [patch]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleSessionRequest
	if !bindJSON(c, &req, "session") {
		return
	}
	session, err := h.service.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Complete godoc
// @Summary Complete session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.CompleteSessionRequest true "Session notes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychologist/sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	var req service.CompleteSessionRequest
	if !bindJSON(c, &req, "session") {
		return
	}
	session, err := h.service.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Cancel godoc
// @Summary Cancel session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychologist/sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	session, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /psychologist/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
