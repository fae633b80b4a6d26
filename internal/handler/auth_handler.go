package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service      *service.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new handler. secureCookie marks the session cookie
// as HTTPS-only.
func NewAuthHandler(svc *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: svc, secureCookie: secureCookie}
}

// Login godoc
// @Summary Authenticate user
// @Description Checks the credential table, writes the session markers and issues a token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "login") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.AccessToken, int(res.ExpiresIn), "/", "", h.secureCookie, true)
	response.OK(c, res)
}

// Logout godoc
// @Summary Logout current session
// @Description Clears the role and email markers of the session
// @Tags Authentication
// @Produce json
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		middleware.Redirect(c)
		return
	}
	if err := h.service.Logout(c.Request.Context(), claims.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.NoContent(c)
}

// Me godoc
// @Summary Get current user
// @Description Returns the user behind the session markers
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	info, err := h.service.Profile(actor.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	info.Role = actor.Role
	response.OK(c, info)
}

// Users godoc
// @Summary List portal users
// @Description Credential table without passwords
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AuthHandler) Users(c *gin.Context) {
	response.OK(c, h.service.Users())
}
