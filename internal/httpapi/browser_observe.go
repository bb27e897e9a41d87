package httpapi

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// screenshot handles GET /api/browser/:id/screenshot?full_page&format&quality.
// full_page/format/quality are accepted for API-surface compatibility; the
// underlying Page.captureScreenshot call only varies by clip rectangle here,
// which screenshot_element covers separately.
func (s *Server) screenshot(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	png, err := client.Ops.Screenshot(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"image_base64": base64.StdEncoding.EncodeToString(png)})
}

type selectorQuery struct {
	Selector string `form:"selector"`
}

// screenshotElement handles GET /api/browser/:id/screenshot_element.
func (s *Server) screenshotElement(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var q selectorQuery
	_ = c.ShouldBindQuery(&q)
	png, err := client.Ops.ScreenshotElement(c.Request.Context(), "", q.Selector)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"image_base64": base64.StdEncoding.EncodeToString(png)})
}

// pageState handles GET /api/browser/:id/page_state.
func (s *Server) pageState(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	state, err := client.Ops.GetPageState(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, state)
}

// axTree handles GET /api/browser/:id/ax_tree: the filtered, ref-labelled
// tree, rebuilt fresh on every call so ref ids stay valid for the
// click_ref/type_ref calls that typically follow immediately after.
func (s *Server) axTree(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	tree, err := client.Ops.DOMContext(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tree)
}

// domContext handles GET /api/browser/:id/dom_context, identical to ax_tree
// under a name that matches how agent prompts usually refer to it.
func (s *Server) domContext(c *gin.Context) {
	s.axTree(c)
}

type extractRequest struct {
	Expression string `json:"expression"`
}

// extract handles POST /api/browser/:id/extract.
func (s *Server) extract(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req extractRequest
	if !bind(c, &req) {
		return
	}
	raw, err := client.Ops.ExtractData(c.Request.Context(), "", req.Expression)
	if err != nil {
		fail(c, err)
		return
	}
	var decoded interface{}
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
		decoded = string(raw)
	}
	ok(c, decoded)
}

// pageText handles GET /api/browser/:id/page_text.
func (s *Server) pageText(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	text, err := client.Ops.GetPageText(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"text": text, "length": len([]rune(text))})
}

type refRequest struct {
	RefID string `json:"ref_id"`
	Text  string `json:"text,omitempty"`
}

// clickRef handles POST /api/browser/:id/click_ref.
func (s *Server) clickRef(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req refRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.ClickRef(c.Request.Context(), "", req.RefID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// typeRef handles POST /api/browser/:id/type_ref.
func (s *Server) typeRef(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req refRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.TypeRef(c.Request.Context(), "", req.RefID, req.Text); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// focusRef handles POST /api/browser/:id/focus_ref.
func (s *Server) focusRef(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req refRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.FocusRef(c.Request.Context(), "", req.RefID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type evaluateRequest struct {
	Expression string `json:"expression"`
}

// evaluate handles POST /api/browser/:id/evaluate.
func (s *Server) evaluate(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req evaluateRequest
	if !bind(c, &req) {
		return
	}
	raw, err := client.Ops.EvaluateJS(c.Request.Context(), "", req.Expression)
	if err != nil {
		fail(c, err)
		return
	}
	var decoded interface{}
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
		decoded = string(raw)
	}
	ok(c, decoded)
}

// pdf handles GET /api/browser/:id/pdf.
func (s *Server) pdf(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	data, err := client.Ops.PrintToPDF(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"pdf_base64": base64.StdEncoding.EncodeToString(data)})
}
