package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// ReferralHandler exposes psychology referrals.
type ReferralHandler struct {
	service *service.ReferralService
}

// NewReferralHandler constructs handler.
func NewReferralHandler(svc *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{service: svc}
}

// List godoc
// @Summary List psychology referrals
// @Tags Referrals
// @Produce json
// @Param studentId query string false "Student code"
// @Param status query string false "pending|accepted|in_progress|completed"
// @Success 200 {object} response.Envelope
// @Router /psychologist/referrals [get]
func (h *ReferralHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	status := models.ReferralStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
		return
	}
	referrals, err := h.service.List(c.Request.Context(), actor, c.Query("studentId"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, referrals, map[string]interface{}{"total": len(referrals)})
}

// Create godoc
// @Summary Refer a student to psychology
// @Tags Referrals
// @Accept json
// @Produce json
// @Param payload body service.CreateReferralRequest true "Referral payload"
// @Success 201 {object} response.Envelope
// @Router /tutor/referrals [post]
func (h *ReferralHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.CreateReferralRequest
	if !bindJSON(c, &req, "referral") {
		return
	}
	referral, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, referral)
}

// Advance godoc
// @Summary Advance a referral status
// @Tags Referrals
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Param payload body service.AdvanceReferralRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /psychologist/referrals/{id} [patch]
func (h *ReferralHandler) Advance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.AdvanceReferralRequest
	if !bindJSON(c, &req, "referral") {
		return
	}
	referral, err := h.service.Advance(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, referral)
}
