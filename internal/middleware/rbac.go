package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// RBAC narrows an already gated group. "SELF" admits students whose code
// matches the :studentId path parameter.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == "SELF" {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			Redirect(c)
			return
		}

		if _, ok := allowedRoles[actor.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if target := c.Param("studentId"); target != "" && target == actor.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
