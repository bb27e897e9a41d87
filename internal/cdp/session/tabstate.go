// Package session implements C2: per-tab state and the attach/detach
// bookkeeping CDP flatten mode requires. One Registry exists per CDPClient
// (per running browser).
package session

import (
	"sync"
	"time"
)

// AXCacheEntry maps a short ref id (e1, e2, ...) to the backend node it was
// assigned to, and when the snapshot that produced it was captured.
type AXCacheEntry struct {
	BackendNodeID int64
	CapturedAt    time.Time
}

// TabState is the per-tab record described in the data model: CDP session
// id, authoritative URL, accessibility ref cache, and inflight network
// counter. Locked independently of the Registry's own map lock so that AX
// cache and inflight-counter updates on one tab never block operations on
// another.
type TabState struct {
	TargetID string
	// SessionID is "" only for the as-yet-undiscovered case; once a tab is
	// attached via flatten mode it always carries the id attach returned.
	SessionID string

	mu                sync.Mutex
	url               string
	title             string
	axCache           map[string]AXCacheEntry
	inflightRequests  int
	consoleCapture    bool
	frameExecutionCtx map[string]int64 // frameID -> Runtime execution context id
}

func newTabState(targetID, sessionID string) *TabState {
	return &TabState{
		TargetID:          targetID,
		SessionID:         sessionID,
		axCache:           make(map[string]AXCacheEntry),
		frameExecutionCtx: make(map[string]int64),
	}
}

// URL returns the authoritatively tracked URL for this tab.
func (t *TabState) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// SetURL updates the tracked URL. Called from CDP navigation command
// results and from Page.frameNavigated, never from JS evaluation.
func (t *TabState) SetURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
}

// Title returns the last known tab title.
func (t *TabState) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// SetTitle updates the tracked title.
func (t *TabState) SetTitle(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.title = title
}

// PutAXRef records a ref id's resolution, replacing the whole cache is done
// via ClearAXCache, not by calling this repeatedly with a stale snapshot.
func (t *TabState) PutAXRef(refID string, backendNodeID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.axCache[refID] = AXCacheEntry{BackendNodeID: backendNodeID, CapturedAt: time.Now()}
}

// ResolveAXRef looks up a previously assigned ref id.
func (t *TabState) ResolveAXRef(refID string) (AXCacheEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.axCache[refID]
	return entry, ok
}

// ReplaceAXCache atomically swaps in a freshly captured ref set, built by
// the semref engine from the tree it just fetched.
func (t *TabState) ReplaceAXCache(entries map[string]AXCacheEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.axCache = entries
}

// ClearAXCache invalidates the cache. Called on every committed navigation
// of this tab's main frame (spec invariant 3).
func (t *TabState) ClearAXCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.axCache = make(map[string]AXCacheEntry)
}

// IncrementInflight records Network.requestWillBeSent.
func (t *TabState) IncrementInflight() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflightRequests++
}

// DecrementInflight records Network.loadingFinished/loadingFailed. Never
// goes below zero (spec invariant 2): a decrement racing a reset is clamped.
func (t *TabState) DecrementInflight() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflightRequests > 0 {
		t.inflightRequests--
	}
}

// ResetInflight zeroes the counter. Called on Page.frameStoppedLoading of
// the main frame.
func (t *TabState) ResetInflight() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflightRequests = 0
}

// Inflight returns the current inflight request count.
func (t *TabState) Inflight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflightRequests
}

// SetConsoleCapture toggles whether console events are being retained for
// this tab (enable_console_capture / clear_console operate regardless of
// this flag, but the monitor only appends while it's set).
func (t *TabState) SetConsoleCapture(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consoleCapture = on
}

// ConsoleCaptureEnabled reports the current capture toggle.
func (t *TabState) ConsoleCaptureEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consoleCapture
}

// SetFrameExecutionContext records the Runtime execution context id that
// owns a given frame, used by switch_frame to re-target evaluate calls.
func (t *TabState) SetFrameExecutionContext(frameID string, executionContextID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frameExecutionCtx[frameID] = executionContextID
}

// FrameExecutionContext looks up the execution context id for a frame.
func (t *TabState) FrameExecutionContext(frameID string) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.frameExecutionCtx[frameID]
	return id, ok
}
