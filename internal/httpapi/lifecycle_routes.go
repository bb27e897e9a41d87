package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/events"
)

type launchResponse struct {
	PID     int `json:"pid"`
	CDPPort int `json:"cdp_port"`
}

// launch handles POST /api/launch/:id.
func (s *Server) launch(c *gin.Context) {
	profileID := c.Param("id")
	lp, err := s.manager.LaunchOrAttach(c.Request.Context(), profileID)
	if err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewBrowserLaunchedEvent(profileID, lp.PID, lp.CDPPort))
	created(c, launchResponse{PID: lp.PID, CDPPort: lp.CDPPort})
}

// kill handles POST /api/kill/:id.
func (s *Server) kill(c *gin.Context) {
	profileID := c.Param("id")
	if err := s.manager.Kill(profileID); err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewBrowserKilledEvent(profileID))
	ok(c, gin.H{"killed": profileID})
}

type registerExternalRequest struct {
	ProfileID string `json:"profile_id"`
	PID       int    `json:"pid"`
	CDPPort   int    `json:"cdp_port"`
}

// registerExternal handles POST /api/register-external.
func (s *Server) registerExternal(c *gin.Context) {
	var req registerExternalRequest
	if !bind(c, &req) {
		return
	}
	if req.ProfileID == "" || req.CDPPort <= 0 {
		c.JSON(400, envelope{Success: false, Error: "profile_id and cdp_port are required"})
		return
	}
	lp, err := s.manager.RegisterExternal(c.Request.Context(), req.ProfileID, req.PID, req.CDPPort)
	if err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewBrowserLaunchedEvent(req.ProfileID, lp.PID, lp.CDPPort))
	created(c, launchResponse{PID: lp.PID, CDPPort: lp.CDPPort})
}

// running handles GET /api/running.
func (s *Server) running(c *gin.Context) {
	ok(c, s.manager.Running())
}
