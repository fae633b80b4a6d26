package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/service"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type gateFixture struct {
	auth    *service.AuthService
	markers *service.MarkerService
	gate    *Gate
}

func newGateFixture(t *testing.T) gateFixture {
	t.Helper()
	markers := service.NewMarkerService(kv.NewMemory(), "session:", nil)
	auth, err := service.NewAuthService(models.DemoCredentials, markers, nil, nil, service.AuthConfig{
		AccessTokenSecret: "secret",
		BcryptCost:        bcrypt.MinCost,
	})
	require.NoError(t, err)
	return gateFixture{auth: auth, markers: markers, gate: NewGate(auth, markers, nil)}
}

func (f gateFixture) token(t *testing.T, email, password string) string {
	t.Helper()
	resp, err := f.auth.Login(context.Background(), models.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return resp.AccessToken
}

func gatedRouter(f gateFixture, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/page", f.gate.Require(roles...), func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "role": actor.Role})
	})
	return r
}

func TestGateAuthorizesMatchingRole(t *testing.T) {
	f := newGateFixture(t)
	token := f.token(t, "estudiante@sistema.edu", "est123")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	gatedRouter(f, models.RoleStudent).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"EST-1234","role":"student"}`, rec.Body.String())
}

func TestGateAbsentMarkerNeverAuthorizes(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	token := f.token(t, "estudiante@sistema.edu", "est123")
	claims, err := f.auth.ValidateToken(token)
	require.NoError(t, err)
	require.NoError(t, f.markers.Clear(ctx, claims.SessionID))

	decision, err := f.gate.Evaluate(ctx, token, []models.UserRole{models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, GateRedirecting, decision.State)
	assert.Empty(t, decision.Actor.Role)

	for _, roles := range [][]models.UserRole{nil, models.AllRoles, {models.RoleStudent}} {
		decision, err := f.gate.Evaluate(ctx, token, roles)
		require.NoError(t, err)
		assert.NotEqual(t, GateAuthorized, decision.State)
	}

	decision, err = f.gate.Evaluate(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, GateRedirecting, decision.State)
}

func TestGateRoleMismatchRedirects(t *testing.T) {
	f := newGateFixture(t)
	token := f.token(t, "tutor@sistema.edu", "tutor123")

	decision, err := f.gate.Evaluate(context.Background(), token, []models.UserRole{models.RolePsychologist, models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, GateRedirecting, decision.State)
	assert.Equal(t, "role mismatch", decision.Reason)
}

func TestGateTrustsStoredMarkerOverToken(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	token := f.token(t, "tutor@sistema.edu", "tutor123")
	claims, err := f.auth.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, f.markers.Write(ctx, claims.SessionID, models.SessionMarkers{Role: models.RoleAdmin, Email: "tutor@sistema.edu"}))
	decision, err := f.gate.Evaluate(ctx, token, []models.UserRole{models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, GateAuthorized, decision.State)
	assert.Equal(t, models.RoleAdmin, decision.Actor.Role)
	assert.Equal(t, "TUT-001", decision.Actor.UserID)
}

func TestGateRedirectResponses(t *testing.T) {
	f := newGateFixture(t)
	router := gatedRouter(f, models.RoleAdmin)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginRoute, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Error appErrors.Error        `json:"error"`
		Meta  map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, body.Error.Code)
	assert.Equal(t, LoginRoute, body.Meta["redirect"])
}

func TestGateAcceptsSessionCookie(t *testing.T) {
	f := newGateFixture(t)
	token := f.token(t, "admin@sistema.edu", "admin123")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	gatedRouter(f, models.RoleAdmin).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingMarkers struct{}

func (failingMarkers) Read(context.Context, string) (models.SessionMarkers, bool, error) {
	return models.SessionMarkers{}, false, appErrors.Wrap(errors.New("down"), appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "down")
}

func TestGateSubstrateFailure(t *testing.T) {
	f := newGateFixture(t)
	token := f.token(t, "admin@sistema.edu", "admin123")
	gate := NewGate(f.auth, failingMarkers{}, nil)

	decision, err := gate.Evaluate(context.Background(), token, nil)
	require.Error(t, err)
	assert.Equal(t, GateChecking, decision.State)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/page", gate.Require(), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
