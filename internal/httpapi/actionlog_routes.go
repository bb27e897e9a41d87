package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// getActionLog handles GET /api/action_log?profile_id=&limit=.
func (s *Server) getActionLog(c *gin.Context) {
	profileID := c.Query("profile_id")
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	ok(c, s.log.ListByProfile(profileID, limit))
}

// clearActionLog handles DELETE /api/action_log?profile_id=.
func (s *Server) clearActionLog(c *gin.Context) {
	profileID := c.Query("profile_id")
	ok(c, gin.H{"cleared": s.log.ClearByProfile(profileID)})
}
