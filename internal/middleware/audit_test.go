package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/wellness-api/internal/models"
)

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.PATCH("/tasks/:id", withActor(models.Actor{UserID: "PSY-001", Role: models.RolePsychologist}), Audit(zap.New(core), "feedback", "task"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.DELETE("/tasks/:id", Audit(zap.New(core), "delete", "task"), func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/tasks/task_1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/tasks/task_2", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "feedback", fields["action"])
	assert.Equal(t, "PSY-001", fields["user_id"])
	assert.Equal(t, "task_1", fields["resource_id"])
}

func TestSetCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/dashboard", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "true", rec.Header().Get(CacheHitHeader))
	assert.Contains(t, rec.Body.String(), `"cacheHit":true`)
}
