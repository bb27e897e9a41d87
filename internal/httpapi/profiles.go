package httpapi

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/events"
	"github.com/browsion/browsion-core/internal/profile"
)

// listProfiles handles GET /api/profiles, sorted by id for stable output
// since profile.Store.List makes no ordering guarantee.
func (s *Server) listProfiles(c *gin.Context) {
	profiles := s.profiles.List()
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	ok(c, profiles)
}

// createProfile handles POST /api/profiles.
func (s *Server) createProfile(c *gin.Context) {
	var p profile.Profile
	if !bind(c, &p) {
		return
	}
	rec, err := s.profiles.Create(p)
	if err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewProfileCreatedEvent(rec.ID))
	created(c, rec)
}

// getProfile handles GET /api/profiles/:id.
func (s *Server) getProfile(c *gin.Context) {
	p, found := s.profiles.Get(c.Param("id"))
	if !found {
		c.JSON(404, envelope{Success: false, Error: "profile not found"})
		return
	}
	ok(c, p)
}

// updateProfile handles PUT /api/profiles/:id.
func (s *Server) updateProfile(c *gin.Context) {
	var p profile.Profile
	if !bind(c, &p) {
		return
	}
	updated, err := s.profiles.Update(c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewProfileUpdatedEvent(updated.ID))
	ok(c, updated)
}

// deleteProfile handles DELETE /api/profiles/:id.
func (s *Server) deleteProfile(c *gin.Context) {
	id := c.Param("id")
	if err := s.profiles.Delete(id); err != nil {
		fail(c, err)
		return
	}
	s.hub.Broadcast(events.NewProfileDeletedEvent(id))
	ok(c, gin.H{"deleted": id})
}
