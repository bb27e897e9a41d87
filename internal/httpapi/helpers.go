package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/lifecycle"
)

// clientFor resolves the profile id path param to its live CDPClient,
// writing the envelope and returning ok=false itself when the profile has
// no running browser — the common guard every per-browser route needs
// before touching c3's Ops.
func clientFor(c *gin.Context, manager *lifecycle.Manager) (*lifecycle.Client, bool) {
	profileID := c.Param("id")
	client, err := manager.ClientFor(c.Request.Context(), profileID)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return client, true
}

// contextWithTimeout derives a bounded context from the request's own,
// so a client-side timeout_ms never outlives gin's request context.
func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// bind decodes the JSON request body into dst, failing the request with a
// KindInvalidArgument envelope on malformed input. Returns false on error.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(400, envelope{Success: false, Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
