package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// PsychopedagogyHandler exposes referrals, sessions and support plans of the
// psychopedagogy area.
type PsychopedagogyHandler struct {
	service *service.PsychopedagogyService
}

// NewPsychopedagogyHandler constructs handler.
func NewPsychopedagogyHandler(svc *service.PsychopedagogyService) *PsychopedagogyHandler {
	return &PsychopedagogyHandler{service: svc}
}

// ListReferrals godoc
// @Summary List psychopedagogy referrals
// @Tags Psychopedagogy
// @Produce json
// @Param studentId query string false "Student code"
// @Param status query string false "pending|accepted|in_evaluation|completed"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/referrals [get]
func (h *PsychopedagogyHandler) ListReferrals(c *gin.Context) {
	status := models.PsychopedagogyReferralStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
		return
	}
	referrals, err := h.service.ListReferrals(c.Request.Context(), c.Query("studentId"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, referrals, map[string]interface{}{"total": len(referrals)})
}

// CreateReferral godoc
// @Summary Refer a student to psychopedagogy
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param payload body service.CreatePsychopedagogyReferralRequest true "Referral payload"
// @Success 201 {object} response.Envelope
// @Router /psychopedagogy/referrals [post]
func (h *PsychopedagogyHandler) CreateReferral(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.CreatePsychopedagogyReferralRequest
	if !bindJSON(c, &req, "referral") {
		return
	}
	referral, err := h.service.CreateReferral(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, referral)
}

// AcceptReferral godoc
// @Summary Accept a referral
// @Tags Psychopedagogy
// @Produce json
// @Param id path string true "Referral ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychopedagogue/referrals/{id}/accept [post]
func (h *PsychopedagogyHandler) AcceptReferral(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	referral, err := h.service.AcceptReferral(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, referral)
}

// AdvanceReferral godoc
// @Summary Advance a referral status
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Param payload body service.AdvancePsychopedagogyReferralRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/referrals/{id} [patch]
func (h *PsychopedagogyHandler) AdvanceReferral(c *gin.Context) {
	var req service.AdvancePsychopedagogyReferralRequest
	if !bindJSON(c, &req, "referral") {
		return
	}
	referral, err := h.service.AdvanceReferral(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, referral)
}

// ListSessions godoc
// @Summary List psychopedagogy sessions
// @Tags Psychopedagogy
// @Produce json
// @Param studentId query string false "Student code"
// @Param status query string false "scheduled|completed|cancelled"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/sessions [get]
func (h *PsychopedagogyHandler) ListSessions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	status := models.ScheduleStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
		return
	}
	sessions, err := h.service.ListSessions(c.Request.Context(), actor, studentScope(c, actor), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// ScheduleSession godoc
// @Summary Schedule a psychopedagogy session
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param payload body service.SchedulePsychopedagogySessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /psychopedagogue/sessions [post]
func (h *PsychopedagogyHandler) ScheduleSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.SchedulePsychopedagogySessionRequest
	if !bindJSON(c, &req, "session") {
		return
	}
	session, err := h.service.ScheduleSession(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// CompleteSession godoc
// @Summary Complete a psychopedagogy session
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.CompletePsychopedagogySessionRequest true "Outcome"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/sessions/{id}/complete [post]
func (h *PsychopedagogyHandler) CompleteSession(c *gin.Context) {
	var req service.CompletePsychopedagogySessionRequest
	if !bindJSON(c, &req, "session") {
		return
	}
	session, err := h.service.CompleteSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// CancelSession godoc
// @Summary Cancel a psychopedagogy session
// @Tags Psychopedagogy
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/sessions/{id}/cancel [post]
func (h *PsychopedagogyHandler) CancelSession(c *gin.Context) {
	session, err := h.service.CancelSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// ListPlans godoc
// @Summary List support plans
// @Tags Psychopedagogy
// @Produce json
// @Param studentId query string false "Student code"
// @Success 200 {object} response.Envelope
// @Router /psychopedagogue/plans [get]
func (h *PsychopedagogyHandler) ListPlans(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	plans, err := h.service.ListPlans(c.Request.Context(), actor, studentScope(c, actor))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans)
}

// CreatePlan godoc
// @Summary Create a support plan
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param payload body service.SupportPlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychopedagogue/plans [post]
func (h *PsychopedagogyHandler) CreatePlan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.SupportPlanRequest
	if !bindJSON(c, &req, "plan") {
		return
	}
	plan, err := h.service.CreatePlan(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// UpdatePlan godoc
// @Summary Update a support plan
// @Tags Psychopedagogy
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body service.UpdateSupportPlanRequest true "Plan changes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychopedagogue/plans/{id} [patch]
func (h *PsychopedagogyHandler) UpdatePlan(c *gin.Context) {
	var req service.UpdateSupportPlanRequest
	if !bindJSON(c, &req, "plan") {
		return
	}
	plan, err := h.service.UpdatePlan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan)
}
