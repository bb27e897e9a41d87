package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
)

// tabs handles GET /api/browser/:id/tabs.
func (s *Server) tabs(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	ok(c, client.Ops.ListTabs())
}

type newTabRequest struct {
	URL string `json:"url,omitempty"`
}

// newTab handles POST /api/browser/:id/tabs/new.
func (s *Server) newTab(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req newTabRequest
	_ = c.ShouldBindJSON(&req)
	targetID, err := client.Ops.NewTab(c.Request.Context(), req.URL)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"target_id": targetID})
}

type switchTabRequest struct {
	TargetID string `json:"target_id"`
}

// switchTab handles POST /api/browser/:id/tabs/switch.
func (s *Server) switchTab(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req switchTabRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.SwitchTab(req.TargetID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// closeTab handles POST /api/browser/:id/tabs/close.
func (s *Server) closeTab(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req switchTabRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.CloseTab(c.Request.Context(), req.TargetID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type waitForNewTabRequest struct {
	TimeoutMS int `json:"timeout_ms,omitempty"`
}

// waitForNewTab handles POST /api/browser/:id/wait_for_new_tab.
func (s *Server) waitForNewTab(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req waitForNewTabRequest
	_ = c.ShouldBindJSON(&req)
	timeout := 30 * time.Second
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	ctx, cancel := contextWithTimeout(c, timeout)
	defer cancel()
	targetID, err := client.Ops.WaitForNewTab(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"target_id": targetID})
}
