package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// NavigationHandler serves the dashboard shell menus.
type NavigationHandler struct {
	navigation *service.NavigationService
	auth       *service.AuthService
}

// NewNavigationHandler constructs the handler.
func NewNavigationHandler(navigation *service.NavigationService, auth *service.AuthService) *NavigationHandler {
	return &NavigationHandler{navigation: navigation, auth: auth}
}

// Get godoc
// @Summary Navigation menu
// @Description Side navigation and user menu of the caller's role
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.auth.Profile(actor.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	nav, err := h.navigation.ForRole(actor.Role, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nav)
}
