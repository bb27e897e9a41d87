package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/ops"
	"github.com/browsion/browsion-core/internal/lifecycle"
)

// activeSessionID resolves the session id intercept routes need: these
// operate Fetch-domain rules per CDP session, one level below the target id
// every other route addresses, and the active tab is what "this browser"
// means when no tab is named explicitly.
func activeSessionID(client *lifecycle.Client) (string, error) {
	ts := client.Registry.Active()
	if ts == nil {
		return "", browsionerr.New(browsionerr.KindSelectorNotFound, "no active tab")
	}
	return ts.SessionID, nil
}

// enableConsole handles POST /api/browser/:id/console/enable.
func (s *Server) enableConsole(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.EnableConsoleCapture(c.Request.Context(), ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// consoleLogs handles GET /api/browser/:id/console.
func (s *Server) consoleLogs(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	entries, err := client.Ops.GetConsoleLogs("")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}

// clearConsole handles POST /api/browser/:id/console/clear.
func (s *Server) clearConsole(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.ClearConsole(""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// networkLog handles GET /api/browser/:id/network_log.
func (s *Server) networkLog(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	entries, err := client.Ops.GetNetworkLog("")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, entries)
}

// clearNetworkLog handles POST /api/browser/:id/network_log/clear.
func (s *Server) clearNetworkLog(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.ClearNetworkLog(""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type interceptBlockRequest struct {
	Pattern string `json:"pattern"`
}

// interceptBlock handles POST /api/browser/:id/intercept/block.
func (s *Server) interceptBlock(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	sessionID, err := activeSessionID(client)
	if err != nil {
		fail(c, err)
		return
	}
	var req interceptBlockRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Intercept.Block(c.Request.Context(), sessionID, req.Pattern); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type interceptMockRequest struct {
	Pattern     string `json:"pattern"`
	Status      int64  `json:"status"`
	Body        string `json:"body,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// interceptMock handles POST /api/browser/:id/intercept/mock.
func (s *Server) interceptMock(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	sessionID, err := activeSessionID(client)
	if err != nil {
		fail(c, err)
		return
	}
	var req interceptMockRequest
	if !bind(c, &req) {
		return
	}
	if req.Status == 0 {
		req.Status = 200
	}
	if err := client.Intercept.Mock(c.Request.Context(), sessionID, req.Pattern, req.Status, req.Body, req.ContentType); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// interceptClear handles POST /api/browser/:id/intercept/clear and DELETE
// /api/browser/:id/intercept: both disable the Fetch domain and drop rules.
func (s *Server) interceptClear(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	sessionID, err := activeSessionID(client)
	if err != nil {
		fail(c, err)
		return
	}
	if err := client.Intercept.Clear(c.Request.Context(), sessionID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// interceptRules handles GET /api/browser/:id/intercept: the rule set
// currently registered for the active tab's session.
func (s *Server) interceptRules(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	sessionID, err := activeSessionID(client)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, client.Intercept.Rules(sessionID))
}

type dialogRequest struct {
	Accept     bool   `json:"accept"`
	PromptText string `json:"prompt_text,omitempty"`
}

// dialog handles POST /api/browser/:id/dialog.
func (s *Server) dialog(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req dialogRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.HandleDialog(c.Request.Context(), "", req.Accept, req.PromptText); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// emulate handles POST /api/browser/:id/emulate.
func (s *Server) emulate(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var opts ops.EmulateOptions
	if !bind(c, &opts) {
		return
	}
	if err := client.Ops.Emulate(c.Request.Context(), "", opts); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// clearEmulation handles DELETE /api/browser/:id/emulate.
func (s *Server) clearEmulation(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	if err := client.Ops.ClearEmulation(c.Request.Context(), ""); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// storageKindParam validates the :type path param shared by the storage
// route group.
func storageKindParam(c *gin.Context) (ops.StorageKind, bool) {
	switch kind := ops.StorageKind(c.Param("type")); kind {
	case ops.StorageLocal, ops.StorageSession:
		return kind, true
	default:
		fail(c, browsionerr.New(browsionerr.KindInvalidArgument, "unknown storage type %q", c.Param("type")))
		return "", false
	}
}

// getStorage handles GET /api/browser/:id/storage/:type.
func (s *Server) getStorage(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	kind, okKind := storageKindParam(c)
	if !okKind {
		return
	}
	data, err := client.Ops.GetStorage(c.Request.Context(), "", kind)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"data": data})
}

// clearStorage handles DELETE /api/browser/:id/storage/:type.
func (s *Server) clearStorage(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	kind, okKind := storageKindParam(c)
	if !okKind {
		return
	}
	if err := client.Ops.ClearStorage(c.Request.Context(), "", kind); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type setStorageRequest struct {
	Data string `json:"data"`
}

// setStorage handles POST /api/browser/:id/storage/:type: merges the keys
// of a JSON object into the tab's storage.
func (s *Server) setStorage(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	kind, okKind := storageKindParam(c)
	if !okKind {
		return
	}
	var req setStorageRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.SetStorage(c.Request.Context(), "", kind, req.Data); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type touchPointRequest struct {
	Selector string `json:"selector,omitempty"`
}

// tap handles POST /api/browser/:id/tap.
func (s *Server) tap(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req touchPointRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.Tap(c.Request.Context(), "", req.Selector); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

type swipeRequest struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// swipe handles POST /api/browser/:id/swipe.
func (s *Server) swipe(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req swipeRequest
	if !bind(c, &req) {
		return
	}
	if err := client.Ops.Swipe(c.Request.Context(), "", req.X1, req.Y1, req.X2, req.Y2); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// frames handles GET /api/browser/:id/frames.
func (s *Server) frames(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	list, err := client.Ops.GetFrames(c.Request.Context(), "")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

type switchFrameRequest struct {
	FrameID string `json:"frame_id"`
}

// switchFrame handles POST /api/browser/:id/frames/switch.
func (s *Server) switchFrame(c *gin.Context) {
	client, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	var req switchFrameRequest
	if !bind(c, &req) {
		return
	}
	executionContextID, err := client.Ops.SwitchFrame("", req.FrameID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"execution_context_id": executionContextID})
}

// framesMain handles POST /api/browser/:id/frames/main: resets addressing
// to the main frame, which for evaluate_js (the only frame-scoped
// operation) means simply not targeting a sub-frame context.
func (s *Server) framesMain(c *gin.Context) {
	_, okClient := clientFor(c, s.manager)
	if !okClient {
		return
	}
	ok(c, gin.H{})
}
