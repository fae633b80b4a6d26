package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
	"github.com/noah-isme/wellness-api/pkg/response"
)

// currentActor returns the gated actor or writes a redirect response.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		middleware.Redirect(c)
		return models.Actor{}, false
	}
	return actor, true
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}, payload string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+payload+" payload"))
		return false
	}
	return true
}

// studentScope resolves the student a request is about: the :studentId path
// parameter, else the studentId query. Students always get their own code.
func studentScope(c *gin.Context, actor models.Actor) string {
	if actor.Role == models.RoleStudent {
		return actor.UserID
	}
	if id := c.Param("studentId"); id != "" {
		return id
	}
	return c.Query("studentId")
}
