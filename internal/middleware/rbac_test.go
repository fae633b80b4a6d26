package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/wellness-api/internal/models"
)

func withActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

func TestRBAC(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		actor  *models.Actor
		path   string
		status int
	}{
		{"staff allowed", &models.Actor{UserID: "PSY-001", Role: models.RolePsychologist}, "/students/EST-1234", http.StatusOK},
		{"other student forbidden", &models.Actor{UserID: "EST-5678", Role: models.RoleStudent}, "/students/EST-1234", http.StatusForbidden},
		{"self allowed", &models.Actor{UserID: "EST-1234", Role: models.RoleStudent}, "/students/EST-1234", http.StatusOK},
		{"no actor", nil, "/students/EST-1234", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			handlers := []gin.HandlerFunc{}
			if tc.actor != nil {
				handlers = append(handlers, withActor(*tc.actor))
			}
			handlers = append(handlers, RBAC(string(models.RolePsychologist), string(models.RoleAdmin), "SELF"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			r.GET("/students/:studentId", handlers...)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", withActor(models.Actor{UserID: "TUT-001", Role: models.RoleTutor}), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
