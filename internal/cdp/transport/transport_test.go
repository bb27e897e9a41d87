package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// TestDeliverReplyDropsLateReply verifies that a reply for an id with no
// pending slot (e.g. after a timeout dropped it) is discarded, not panicked
// on or misrouted.
func TestDeliverReplyDropsLateReply(t *testing.T) {
	tr := &Transport{
		closed:  make(chan struct{}),
		pending: make(map[int64]*pendingReply),
		subs:    make(map[eventKey][]chan Event),
	}

	tr.deliverReply(inboundFrame{ID: 42, Result: []byte(`{}`)})
	// No pending slot for id 42: deliverReply must not block or panic.
}

// TestSubscribeFIFO verifies that two concurrent waiters on the same key
// resolve in registration order, each consuming exactly one event.
func TestSubscribeFIFO(t *testing.T) {
	tr := &Transport{
		closed:  make(chan struct{}),
		pending: make(map[int64]*pendingReply),
		subs:    make(map[eventKey][]chan Event),
	}

	w1 := tr.Subscribe("sess", "Target.targetCreated")
	w2 := tr.Subscribe("sess", "Target.targetCreated")

	tr.deliverEvent(inboundFrame{SessionID: "sess", Method: "Target.targetCreated", Params: []byte(`{"n":1}`)})
	tr.deliverEvent(inboundFrame{SessionID: "sess", Method: "Target.targetCreated", Params: []byte(`{"n":2}`)})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev1, err := w1.Wait(ctx)
	if err != nil {
		t.Fatalf("w1.Wait: %v", err)
	}
	if string(ev1.Params) != `{"n":1}` {
		t.Errorf("w1 got %s, want first event", ev1.Params)
	}

	ev2, err := w2.Wait(ctx)
	if err != nil {
		t.Fatalf("w2.Wait: %v", err)
	}
	if string(ev2.Params) != `{"n":2}` {
		t.Errorf("w2 got %s, want second event", ev2.Params)
	}
}

// TestDeliverReplyResolvesExactlyOnce ensures a given command id only ever
// resolves one waiter, satisfying the |{replies}| <= 1 invariant.
func TestDeliverReplyResolvesExactlyOnce(t *testing.T) {
	tr := &Transport{
		closed:  make(chan struct{}),
		pending: make(map[int64]*pendingReply),
		subs:    make(map[eventKey][]chan Event),
	}

	reply := &pendingReply{resultCh: make(chan json.RawMessage, 1), errCh: make(chan error, 1)}
	tr.mu.Lock()
	tr.pending[7] = reply
	tr.mu.Unlock()

	tr.deliverReply(inboundFrame{ID: 7, Result: []byte(`"ok"`)})

	tr.mu.Lock()
	_, stillPending := tr.pending[7]
	tr.mu.Unlock()
	if stillPending {
		t.Error("expected pending slot to be removed after first reply")
	}

	select {
	case <-reply.resultCh:
	default:
		t.Error("expected resultCh to have a value")
	}
}
