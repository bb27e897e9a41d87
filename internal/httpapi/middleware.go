package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/actionlog"
)

// apiKeyAuth rejects requests missing a matching X-API-Key header. A blank
// configured key disables the check entirely (local-only deployments that
// never set one).
func apiKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Error: "missing or invalid X-API-Key"})
			return
		}
		c.Next()
	}
}

// actionLogMiddleware times every request and appends one actionlog.Entry
// on completion, tagged with the profile id embedded in the path (params
// named "id" throughout the per-browser route group) when present.
func actionLogMiddleware(log *actionlog.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		profileID := c.Param("id")
		operation := c.FullPath()
		if operation == "" {
			operation = c.Request.URL.Path
		}

		var opErr error
		if len(c.Errors) > 0 {
			opErr = c.Errors.Last()
		} else if c.Writer.Status() >= 400 {
			opErr = statusError(c.Writer.Status())
		}
		log.Append(actionlog.New(profileID, operation, start, time.Now(), opErr))
	}
}

type statusError int

func (s statusError) Error() string {
	return http.StatusText(int(s))
}
