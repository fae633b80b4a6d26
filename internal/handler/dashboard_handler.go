package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

type dashboardService interface {
	For(ctx context.Context, actor models.Actor) (interface{}, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Role dashboard
// @Description Summary statistics of the caller's landing page
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Header 200 {string} X-Cache-Hit "true when served from cache"
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.For(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["role"] = actor.Role
	meta["generatedInMs"] = time.Since(start).Milliseconds()
	response.OK(c, summary, meta)
}
