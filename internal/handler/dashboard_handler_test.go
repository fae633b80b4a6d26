package handler

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

	"github.com/noah-isme/wellness-api/internal/dto"
	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

type fakeDashboardSrv struct {
	resp  interface{}
	hit   bool
	err   error
	actor models.Actor
}

func (f *fakeDashboardSrv) For(_ context.Context, actor models.Actor) (interface{}, bool, error) {
	f.actor = actor
	return f.resp, f.hit, f.err
}

func dashboardContext(actor *models.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Request.Header.Set("Accept", "application/json")
	if actor != nil {
		c.Set(middleware.ContextActorKey, *actor)
	}
	return c, rec
}

func TestDashboardHandlerRequiresActor(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})
	c, rec := dashboardContext(nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerCacheHit(t *testing.T) {
	srv := &fakeDashboardSrv{resp: &dto.PsychopedagogueDashboard{ActivePlans: 2}, hit: true}
	handler := NewDashboardHandler(srv)
	actor := models.Actor{UserID: "PSPED-001", Role: models.RolePsychopedagogue}
	c, rec := dashboardContext(&actor)

	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, actor, srv.actor)
	assert.Equal(t, "true", rec.Header().Get(middleware.CacheHitHeader))

	var envelope struct {
		Data map[string]interface{} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cacheHit"])
	assert.Equal(t, "psychopedagogue", envelope.Meta["role"])
	assert.EqualValues(t, 2, envelope.Data["activePlans"])
}

func TestDashboardHandlerServiceError(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Wrap(errors.New("down"), appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "store unavailable")})
	actor := models.Actor{UserID: "ADM-001", Role: models.RoleAdmin}
	c, rec := dashboardContext(&actor)

	handler.Get(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
