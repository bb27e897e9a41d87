// Package transport implements the single WebSocket connection to one
// browser (C1 of the design). Every tab session multiplexes over this one
// socket using CDP flatten mode: every outbound frame carries an id and an
// optional sessionId, every inbound frame is either a reply (keyed by id)
// or an event (keyed by sessionId+method).
//
// There is exactly one reader goroutine. It classifies each frame under a
// short-lived lock, releases the lock, and only then resolves waiters on
// channels it already owns. A frame is never re-examined under a lock a
// second time — an earlier version of this router double-acquired the
// routing lock while resolving a reply from within the event-classification
// branch and deadlocked every in-flight command.
package transport

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// DefaultCommandTimeout is used when a caller's context carries no deadline.
const DefaultCommandTimeout = 30 * time.Second

// outboundFrame is the wire shape of a command sent to the browser.
type outboundFrame struct {
	ID        int64           `json:"id"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// inboundFrame is the wire shape of anything the browser sends us. Exactly
// one of (ID set) or (Method set) is populated per CDP's own contract.
type inboundFrame struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type pendingReply struct {
	resultCh chan json.RawMessage
	errCh    chan error
}

// eventKey identifies a (sessionID, method) subscription slot. sessionID
// "" denotes browser-level events.
type eventKey struct {
	sessionID string
	method    string
}

// Event is one CDP event delivered to a subscriber.
type Event struct {
	SessionID string
	Method    string
	Params    json.RawMessage
}

// Waiter is a one-shot handle returned by Subscribe; it fires exactly once.
type Waiter struct {
	ch chan Event
}

// Wait blocks until the subscribed event arrives or ctx is done.
func (w *Waiter) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-w.ch:
		return ev, nil
	case <-ctx.Done():
		return Event{}, browsionerr.New(browsionerr.KindTimeout, "waiting for event: %v", ctx.Err())
	}
}

// Transport owns the single WebSocket to one browser and multiplexes every
// command and event for every attached tab session over it.
type Transport struct {
	conn      netConn
	writeMu   sync.Mutex
	nextID    atomic.Int64
	closeOnce sync.Once
	closed    chan struct{}

	mu      sync.Mutex // guards pending and subscribers only; never held across I/O
	pending map[int64]*pendingReply
	subs    map[eventKey][]chan Event

	// EventHook, if set, is invoked for every event frame after routing to
	// subscribers, regardless of whether any subscriber matched. Used by
	// the session/ops layers to update TabState and ring buffers without a
	// subscribe/wait round trip.
	EventHook func(Event)
}

// netConn is the minimal surface transport needs from the dialed socket.
type netConn interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Dial connects to the given CDP WebSocket debugger URL and starts the
// reader goroutine.
func Dial(ctx context.Context, wsURL string) (*Transport, error) {
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindDisconnected, "dial %s: %v", wsURL, err)
	}

	t := &Transport{
		conn:    conn,
		closed:  make(chan struct{}),
		pending: make(map[int64]*pendingReply),
		subs:    make(map[eventKey][]chan Event),
	}

	go t.readLoop()

	return t, nil
}

// Send issues a command and blocks until its reply arrives, the context is
// done, or the default command timeout elapses.
func (t *Transport) Send(ctx context.Context, method string, params any, sessionID string) (json.RawMessage, error) {
	id := t.nextID.Add(1)

	var rawParams json.RawMessage
	if params != nil {
		p, err := json.Marshal(params)
		if err != nil {
			return nil, browsionerr.New(browsionerr.KindInvalidArgument, "marshal params for %s: %v", method, err)
		}
		rawParams = p
	}

	reply := &pendingReply{
		resultCh: make(chan json.RawMessage, 1),
		errCh:    make(chan error, 1),
	}

	t.mu.Lock()
	t.pending[id] = reply
	t.mu.Unlock()

	frame := outboundFrame{ID: id, Method: method, Params: rawParams, SessionID: sessionID}
	data, err := json.Marshal(frame)
	if err != nil {
		t.dropPending(id)
		return nil, browsionerr.New(browsionerr.KindInvalidArgument, "marshal frame for %s: %v", method, err)
	}

	t.writeMu.Lock()
	writeErr := wsutil.WriteClientText(t.conn, data)
	t.writeMu.Unlock()
	if writeErr != nil {
		t.dropPending(id)
		return nil, browsionerr.New(browsionerr.KindDisconnected, "write %s: %v", method, writeErr)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	select {
	case result := <-reply.resultCh:
		return result, nil
	case err := <-reply.errCh:
		return nil, err
	case <-ctx.Done():
		// The reply slot is dropped; a reply that arrives after this point
		// is discarded in deliverReply. CDP has no per-command cancel.
		t.dropPending(id)
		return nil, browsionerr.New(browsionerr.KindTimeout, "%s timed out: %v", method, ctx.Err())
	case <-t.closed:
		t.dropPending(id)
		return nil, browsionerr.New(browsionerr.KindDisconnected, "transport closed while awaiting %s", method)
	}
}

func (t *Transport) dropPending(id int64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// Subscribe registers interest in the next matching event for (sessionID,
// method). Callers must subscribe before issuing the action expected to
// produce the event. Multiple concurrent subscriptions for the same key
// are queued and resolved in registration (FIFO) order.
func (t *Transport) Subscribe(sessionID, method string) *Waiter {
	key := eventKey{sessionID: sessionID, method: method}
	ch := make(chan Event, 1)

	t.mu.Lock()
	t.subs[key] = append(t.subs[key], ch)
	t.mu.Unlock()

	return &Waiter{ch: ch}
}

// Close shuts down the reader loop and closes the socket. Idempotent.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.conn.Close()
	})
	return err
}

// Done reports a channel closed when the transport has disconnected.
func (t *Transport) Done() <-chan struct{} {
	return t.closed
}

func (t *Transport) readLoop() {
	defer t.Close()
	defer t.failAllPending()

	for {
		data, err := wsutil.ReadServerText(t.conn)
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue // malformed frame from the browser; not our contract to enforce
		}

		if frame.Method == "" && frame.ID != 0 {
			t.deliverReply(frame)
			continue
		}
		if frame.Method != "" {
			t.deliverEvent(frame)
			continue
		}
	}
}

// deliverReply classifies and removes the pending slot under the lock, then
// resolves the channel after releasing it — never the other way around.
func (t *Transport) deliverReply(frame inboundFrame) {
	t.mu.Lock()
	reply, ok := t.pending[frame.ID]
	if ok {
		delete(t.pending, frame.ID)
	}
	t.mu.Unlock()

	if !ok {
		return // late reply for a timed-out command; discarded per spec
	}

	if frame.Error != nil {
		reply.errCh <- browsionerr.CDP(frame.Error.Code, frame.Error.Message)
		return
	}
	reply.resultCh <- frame.Result
}

// deliverEvent pops one waiter per matching subscription (FIFO) under the
// lock, then sends to each popped channel after releasing it.
func (t *Transport) deliverEvent(frame inboundFrame) {
	ev := Event{SessionID: frame.SessionID, Method: frame.Method, Params: frame.Params}
	key := eventKey{sessionID: frame.SessionID, method: frame.Method}

	t.mu.Lock()
	var fire chan Event
	if queue := t.subs[key]; len(queue) > 0 {
		fire = queue[0]
		rest := queue[1:]
		if len(rest) == 0 {
			delete(t.subs, key)
		} else {
			t.subs[key] = rest
		}
	}
	t.mu.Unlock()

	if fire != nil {
		fire <- ev
	}

	if t.EventHook != nil {
		t.EventHook(ev)
	}
}

func (t *Transport) failAllPending() {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[int64]*pendingReply)
	t.mu.Unlock()

	for _, reply := range pending {
		reply.errCh <- browsionerr.New(browsionerr.KindDisconnected, "transport closed")
	}
}

// NextCommandID exposes the transport's monotonic id counter for tests and
// diagnostics; commands themselves always use Send.
func (t *Transport) NextCommandID() int64 {
	return t.nextID.Load()
}
