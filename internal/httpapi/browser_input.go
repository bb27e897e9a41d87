package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
)

type selectorRequest struct {
	Selector string `json:"selector"`
}

// click handles POST /api/browser/:id/click.
func (s *Server) click(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectorRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.Click(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// hover handles POST /api/browser/:id/hover.
func (s *Server) hover(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectorRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.Hover(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// doubleClick handles POST /api/browser/:id/double_click.
func (s *Server) doubleClick(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectorRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.DoubleClick(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// rightClick handles POST /api/browser/:id/right_click.
func (s *Server) rightClick(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectorRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.RightClick(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// clickAt handles POST /api/browser/:id/click_at.
func (s *Server) clickAt(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req pointRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.ClickAt(c.Request.Context(), "", req.X, req.Y); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type dragRequest struct {
	FromSelector string `json:"from_selector"`
	ToSelector   string `json:"to_selector"`
}

// drag handles POST /api/browser/:id/drag.
func (s *Server) drag(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req dragRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.Drag(c.Request.Context(), "", req.FromSelector, req.ToSelector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type typeRequest struct {
	Text     string `json:"text"`
	DelayMS  int    `json:"delay_ms,omitempty"`
}

// typeText handles POST /api/browser/:id/type.
func (s *Server) typeText(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req typeRequest
	if !bind(c, &req) {
		return
	}
	var err error
	if req.DelayMS > 0 {
		err = client.Ops.SlowType(c.Request.Context(), "", req.Text, time.Duration(req.DelayMS)*time.Millisecond)
	} else {
		err = client.Ops.TypeText(c.Request.Context(), "", req.Text)
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// slowType handles POST /api/browser/:id/slow_type.
func (s *Server) slowType(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req typeRequest
	if !bind(c, &req) {
		return
	}
	delay := 50 * time.Millisecond
	if req.DelayMS > 0 {
		delay = time.Duration(req.DelayMS) * time.Millisecond
	}
	if err := client.Ops.SlowType(c.Request.Context(), "", req.Text, delay); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type pressKeyRequest struct {
	Key string `json:"key"`
}

// pressKey handles POST /api/browser/:id/press_key.
func (s *Server) pressKey(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req pressKeyRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.PressKey(c.Request.Context(), "", req.Key); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type selectRequest struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// selectOption handles POST /api/browser/:id/select.
func (s *Server) selectOption(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.SelectOption(c.Request.Context(), "", req.Selector, req.Value); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type uploadRequest struct {
	Selector string   `json:"selector"`
	Paths    []string `json:"paths"`
}

// upload handles POST /api/browser/:id/upload.
func (s *Server) upload(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req uploadRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.UploadFile(c.Request.Context(), "", req.Selector, req.Paths); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type scrollRequest struct {
	Selector string  `json:"selector,omitempty"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
}

// scroll handles POST /api/browser/:id/scroll.
func (s *Server) scroll(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req scrollRequest
	if !bind(c, &req) {
		return
	}
	var err error
	if req.Selector != "" {
		err = client.Ops.ScrollElement(c.Request.Context(), "", req.Selector, req.DX, req.DY)
	} else {
		err = client.Ops.Scroll(c.Request.Context(), "", req.DX, req.DY)
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// scrollElement handles POST /api/browser/:id/scroll_element.
func (s *Server) scrollElement(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req scrollRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.ScrollElement(c.Request.Context(), "", req.Selector, req.DX, req.DY); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// scrollIntoView handles POST /api/browser/:id/scroll_into_view.
func (s *Server) scrollIntoView(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req selectorRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.ScrollIntoView(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type waitForRequest struct {
	Selector  string `json:"selector,omitempty"`
	Text      string `json:"text,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

func (r waitForRequest) timeout() time.Duration {
	if r.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// waitFor handles POST /api/browser/:id/wait_for (selector presence, or
// text presence when only text is given).
func (s *Server) waitFor(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req waitForRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, req.timeout())
	defer cancel()
	var err error
	if req.Selector == "" && req.Text != "" {
		err = client.Ops.WaitForText(ctx, "", req.Text)
	} else {
		err = client.Ops.WaitForElement(ctx, "", req.Selector)
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// waitForText handles POST /api/browser/:id/wait_for_text.
func (s *Server) waitForText(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req waitForRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, req.timeout())
	defer cancel()
	if err := client.Ops.WaitForText(ctx, "", req.Text); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// waitPlain handles POST /api/browser/:id/wait: a plain fixed-duration
// pause, for scripts that need to wait out a client-side animation with no
// DOM signal to poll for.
func (s *Server) waitPlain(c *gin.Context) {
	_, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req waitForRequest
	if !bind(c, &req) {
		return
	}
	select {
	case <-c.Request.Context().Done():
	case <-time.After(req.timeout()):
	}
	ok(c, gin.H{})
}
