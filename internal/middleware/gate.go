package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextActorKey stores the models.Actor resolved by the gate.
	ContextActorKey = "actor"
	// ContextRoleKey stores the role marker read from the substrate.
	ContextRoleKey = models.MarkerUserRole

	// SessionCookie carries the access token for browser navigation.
	SessionCookie = "wellness_session"
	// LoginRoute is where redirected visitors land.
	LoginRoute = "/login"
)

// GateState is the outcome of evaluating a request against a gate.
type GateState string

const (
	GateChecking    GateState = "checking"
	GateAuthorized  GateState = "authorized"
	GateRedirecting GateState = "redirecting"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type markerReader interface {
	Read(ctx context.Context, sessionID string) (models.SessionMarkers, bool, error)
}

// Gate admits requests whose stored role marker matches the route's roles.
type Gate struct {
	tokens  tokenValidator
	markers markerReader
	logger  *zap.Logger
}

// Decision is the terminal state of one evaluation.
type Decision struct {
	State  GateState
	Actor  models.Actor
	Claims *models.JWTClaims
	Reason string
}

// NewGate constructs a Gate.
func NewGate(tokens tokenValidator, markers markerReader, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, markers: markers, logger: logger}
}

// Evaluate runs checking -> authorized | redirecting for a raw token. An empty
// allowed list admits any known role. The returned error is set only when the
// substrate could not be read.
func (g *Gate) Evaluate(ctx context.Context, token string, allowed []models.UserRole) (Decision, error) {
	if token == "" {
		return Decision{State: GateRedirecting, Reason: "missing token"}, nil
	}
	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return Decision{State: GateRedirecting, Reason: "invalid token"}, nil
	}
	markers, found, err := g.markers.Read(ctx, claims.SessionID)
	if err != nil {
		return Decision{State: GateChecking, Claims: claims}, err
	}
	if !found {
		return Decision{State: GateRedirecting, Claims: claims, Reason: "role marker absent"}, nil
	}
	if !markers.Role.IsValid() || (len(allowed) > 0 && !lo.Contains(allowed, markers.Role)) {
		return Decision{State: GateRedirecting, Claims: claims, Reason: "role mismatch"}, nil
	}
	return Decision{
		State:  GateAuthorized,
		Claims: claims,
		Actor:  models.Actor{UserID: claims.UserID, Email: markers.Email, Role: markers.Role},
	}, nil
}

// Require protects a route group for the given roles.
func (g *Gate) Require(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := g.Evaluate(c.Request.Context(), TokenFromRequest(c), roles)
		if err != nil {
			g.logger.Warn("gate could not read session markers", zap.Error(err))
			response.Error(c, err)
			return
		}
		if decision.State != GateAuthorized {
			g.logger.Debug("gate redirecting", zap.String("path", c.Request.URL.Path), zap.String("reason", decision.Reason))
			Redirect(c)
			return
		}

		c.Set(ContextUserKey, decision.Claims)
		c.Set(ContextActorKey, decision.Actor)
		c.Set(ContextRoleKey, decision.Actor.Role)
		c.Next()
	}
}

// Redirect sends browsers to the login route and API clients a 401 envelope
// pointing there.
func Redirect(c *gin.Context) {
	if wantsHTML(c.Request) {
		c.Redirect(http.StatusFound, LoginRoute)
		c.Abort()
		return
	}
	response.Error(c, appErrors.ErrUnauthorized, map[string]interface{}{"redirect": LoginRoute})
}

// TokenFromRequest reads the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// ActorFrom returns the actor the gate stored on the context.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// ClaimsFrom returns the validated token claims.
func ClaimsFrom(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
