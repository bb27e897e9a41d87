package ops

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/log"

	"github.com/browsion/browsion-core/internal/redact"
)

// ConsoleEntry is one captured console/log message.
type ConsoleEntry struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NetworkEntry is one captured request/response pair summary. Headers
// carries whichever side's headers (request or response) the triggering
// event supplied, redacted before it reaches the ring buffer.
type NetworkEntry struct {
	RequestID string                 `json:"request_id"`
	Method    string                 `json:"method"`
	URL       string                 `json:"url"`
	Status    int64                  `json:"status,omitempty"`
	Headers   map[string]interface{} `json:"headers,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ringLog holds the bounded per-tab console and network buffers, keyed by
// target id, fed by the EventHook on the transport and drained by the
// get_console_logs/get_network_log operations. Kept on Ops rather than
// TabState because ring-buffer eviction policy belongs to the operations
// layer, while TabState only tracks what navigation/AX semantics need.
type ringLog struct {
	mu       sync.Mutex
	console  map[string][]ConsoleEntry
	network  map[string][]NetworkEntry
	capacity int
	redactor *redact.Redactor
}

func newRingLog(capacity int, redactor *redact.Redactor) *ringLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ringLog{
		console:  make(map[string][]ConsoleEntry),
		network:  make(map[string][]NetworkEntry),
		capacity: capacity,
		redactor: redactor,
	}
}

func (r *ringLog) appendConsole(targetID string, e ConsoleEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := append(r.console[targetID], e)
	if len(buf) > r.capacity {
		buf = buf[len(buf)-r.capacity:]
	}
	r.console[targetID] = buf
}

func (r *ringLog) appendNetwork(targetID string, e NetworkEntry) {
	if r.redactor != nil && e.Headers != nil {
		e.Headers = r.redactor.RedactHeaders(e.Headers)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := append(r.network[targetID], e)
	if len(buf) > r.capacity {
		buf = buf[len(buf)-r.capacity:]
	}
	r.network[targetID] = buf
}

func (r *ringLog) consoleSnapshot(targetID string) []ConsoleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.console[targetID]
	out := make([]ConsoleEntry, len(src))
	copy(out, src)
	return out
}

func (r *ringLog) networkSnapshot(targetID string) []NetworkEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.network[targetID]
	out := make([]NetworkEntry, len(src))
	copy(out, src)
	return out
}

func (r *ringLog) clearConsole(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.console, targetID)
}

func (r *ringLog) clearNetwork(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.network, targetID)
}

// EnableConsoleCapture turns on Log/Runtime console retention for a tab.
func (o *Ops) EnableConsoleCapture(ctx context.Context, targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	if err := o.send(ctx, ts, "Log.enable", log.Enable(), nil); err != nil {
		return err
	}
	ts.SetConsoleCapture(true)
	return nil
}

// GetConsoleLogs returns the captured console entries for a tab.
func (o *Ops) GetConsoleLogs(targetID string) ([]ConsoleEntry, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	return o.logs.consoleSnapshot(ts.TargetID), nil
}

// ClearConsole discards captured console entries for a tab without
// disabling further capture.
func (o *Ops) ClearConsole(targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	o.logs.clearConsole(ts.TargetID)
	return nil
}

// GetNetworkLog returns the captured request/response summaries for a tab.
func (o *Ops) GetNetworkLog(targetID string) ([]NetworkEntry, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	return o.logs.networkSnapshot(ts.TargetID), nil
}

// ClearNetworkLog discards captured network entries for a tab.
func (o *Ops) ClearNetworkLog(targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	o.logs.clearNetwork(ts.TargetID)
	return nil
}

// recordConsoleEntry and recordNetworkEntry are invoked from the lifecycle event
// loop's EventHook, never called directly by HTTP/MCP handlers.
func (o *Ops) recordConsoleEntry(targetID string, e ConsoleEntry) {
	o.logs.appendConsole(targetID, e)
}

func (o *Ops) recordNetworkEntry(targetID string, e NetworkEntry) {
	o.logs.appendNetwork(targetID, e)
}

// RecordConsoleEntry and RecordNetworkEntry are the exported forms the
// lifecycle manager's transport EventHook calls as Log.entryAdded and
// Network.responseReceived events arrive.
func (o *Ops) RecordConsoleEntry(targetID string, e ConsoleEntry) {
	o.recordConsoleEntry(targetID, e)
}

func (o *Ops) RecordNetworkEntry(targetID string, e NetworkEntry) {
	o.recordNetworkEntry(targetID, e)
}
