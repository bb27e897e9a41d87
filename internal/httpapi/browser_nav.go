package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/cdp/ops"
)

type navigateRequest struct {
	URL       string `json:"url"`
	WaitUntil string `json:"wait_until,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

func (r navigateRequest) timeout() time.Duration {
	if r.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// navigate handles POST /api/browser/:id/navigate.
func (s *Server) navigate(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req navigateRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, req.timeout())
	defer cancel()
	if err := client.Ops.Navigate(ctx, "", req.URL); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": req.URL})
}

// navigateWait handles POST /api/browser/:id/navigate_wait.
func (s *Server) navigateWait(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req navigateRequest
	if !bind(c, &req) {
		return
	}
	waitUntil := ops.WaitUntil(req.WaitUntil)
	if waitUntil == "" {
		waitUntil = ops.WaitLoad
	}
	ctx, cancel := contextWithTimeout(c, req.timeout())
	defer cancel()
	if err := client.Ops.NavigateWait(ctx, "", req.URL, waitUntil); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": req.URL})
}

// getURL handles GET /api/browser/:id/url.
func (s *Server) getURL(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	url, err := client.Ops.GetURL("")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}

// getTitle handles GET /api/browser/:id/title.
func (s *Server) getTitle(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	title, err := client.Ops.GetPageTitle("")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"title": title})
}

// goBack handles POST /api/browser/:id/back.
func (s *Server) goBack(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.GoBack(c.Request.Context(), ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// goForward handles POST /api/browser/:id/forward.
func (s *Server) goForward(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.GoForward(c.Request.Context(), ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type reloadRequest struct {
	IgnoreCache bool `json:"ignore_cache,omitempty"`
}

// reload handles POST /api/browser/:id/reload.
func (s *Server) reload(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req reloadRequest
	_ = c.ShouldBindJSON(&req) // body optional
	if err := client.Ops.Reload(c.Request.Context(), "", req.IgnoreCache); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type waitForURLRequest struct {
	URLSubstring string `json:"url_substring"`
	TimeoutMS    int    `json:"timeout_ms,omitempty"`
}

// waitForNavigation handles POST /api/browser/:id/wait_for_navigation: in
// this data model that's equivalent to waiting for network idle on the
// active tab, since there's no separate "navigation started" signal to
// wait out independent of a concrete wait_until/URL condition.
func (s *Server) waitForNavigation(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req navigateRequest
	_ = c.ShouldBindJSON(&req)
	ctx, cancel := contextWithTimeout(c, req.timeout())
	defer cancel()
	if err := client.Ops.WaitForIdle(ctx, ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// waitForURL handles POST /api/browser/:id/wait_for_url.
func (s *Server) waitForURL(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req waitForURLRequest
	if !bind(c, &req) {
		return
	}
	timeout := 30 * time.Second
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	ctx, cancel := contextWithTimeout(c, timeout)
	defer cancel()
	if err := client.Ops.WaitForURL(ctx, "", req.URLSubstring); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}
