package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	allowHeaders  = "Authorization, Content-Type, Accept, Last-Event-ID, X-Request-ID"
	exposeHeaders = "X-Request-ID, X-Cache-Hit"
	allowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
)

// New returns a CORS middleware for the portal front-end. An empty origin list
// allows any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	origins := lo.SliceToMap(allowedOrigins, func(o string) (string, struct{}) {
		return strings.TrimRight(o, "/"), struct{}{}
	})

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && allowed(origins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && len(origins) == 0:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowed(origins map[string]struct{}, origin string) bool {
	if len(origins) == 0 {
		return true
	}
	_, ok := origins[strings.TrimRight(origin, "/")]
	return ok
}
