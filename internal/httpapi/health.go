package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/config"
)

type healthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	RedactionEnabled bool   `json:"redaction_enabled"`
}

// health is the one route never protected by apiKeyAuth: the MCP bridge and
// any external monitor need to probe liveness without a key.
func (s *Server) health(c *gin.Context) {
	ok(c, healthResponse{Status: "ok", Version: config.Version, RedactionEnabled: s.log.RedactionEnabled()})
}
