package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/ops"
)

// cookies handles GET /api/browser/:id/cookies.
func (s *Server) cookies(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	list, err := client.Ops.GetCookies(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// setCookie handles POST /api/browser/:id/cookies/set.
func (s *Server) setCookie(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var cookie ops.Cookie
	if !bind(c, &cookie) {
		return
	}
	if err := client.Ops.SetCookie(c.Request.Context(), "", cookie); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// clearCookies handles POST /api/browser/:id/cookies/clear.
func (s *Server) clearCookies(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.ClearCookies(c.Request.Context(), ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// exportCookies handles GET /api/browser/:id/cookies/export?format=json|netscape.
func (s *Server) exportCookies(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	format := c.DefaultQuery("format", "json")
	switch format {
	case "json":
		list, err := client.Ops.ExportCookiesJSON(c.Request.Context(), "")
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, list)
	case "netscape":
		doc, err := client.Ops.ExportCookiesNetscape(c.Request.Context(), "")
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"document": doc})
	default:
		fail(c, browsionerr.New(browsionerr.KindInvalidArgument, "unknown cookie export format %q", format))
	}
}

type importCookiesRequest struct {
	Format   string      `json:"format,omitempty"`
	Cookies  []ops.Cookie `json:"cookies,omitempty"`
	Document string      `json:"document,omitempty"`
}

// importCookies handles POST /api/browser/:id/cookies/import.
func (s *Server) importCookies(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req importCookiesRequest
	if !bind(c, &req) {
		return
	}
	format := req.Format
	if format == "" {
		format = "json"
	}
	switch format {
	case "json":
		if err := client.Ops.ImportCookiesJSON(c.Request.Context(), "", req.Cookies); err != nil {
			fail(c, err)
			return
		}
	case "netscape":
		if err := client.Ops.ImportCookiesNetscape(c.Request.Context(), "", req.Document); err != nil {
			fail(c, err)
			return
		}
	default:
		fail(c, browsionerr.New(browsionerr.KindInvalidArgument, "unknown cookie import format %q", format))
		return
	}
	ok(c, gin.H{})
}
