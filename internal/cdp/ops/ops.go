// Package ops implements C3: the high-level operations the HTTP and MCP
// layers expose, built directly on the transport and session layers. Every
// operation here replaces what the teacher reached for chromedp's executor
// to do; we instead marshal cdproto's command structs ourselves and drive
// them through transport.Transport.Send, since the point of this layer is
// to exercise the hand-rolled transport rather than chromedp's own.
package ops

import (
	"context"
	"encoding/json"
	"time"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/semref"
	"github.com/browsion/browsion-core/internal/cdp/session"
	"github.com/browsion/browsion-core/internal/cdp/transport"
	"github.com/browsion/browsion-core/internal/redact"
)

// Ops bundles everything a single CDPClient's operations need: the wire
// transport and the tab registry tracking what's attached over it.
type Ops struct {
	tr      *transport.Transport
	reg     *session.Registry
	logs    *ringLog
	semref  *semref.Engine
	Timeout time.Duration
}

// New builds an Ops bound to one browser's transport and tab registry.
// logCapacity bounds the per-tab console/network ring buffers. sr is the
// semantic ref engine sharing the same transport, used by click_ref,
// type_ref, focus_ref and dom_context. redactor scrubs captured request/
// response headers before they land in the network ring buffer; nil
// disables scrubbing.
func New(tr *transport.Transport, reg *session.Registry, sr *semref.Engine, timeout time.Duration, logCapacity int, redactor *redact.Redactor) *Ops {
	if timeout <= 0 {
		timeout = transport.DefaultCommandTimeout
	}
	return &Ops{tr: tr, reg: reg, semref: sr, Timeout: timeout, logs: newRingLog(logCapacity, redactor)}
}

// resolve returns the TabState an operation should address: the named
// target, or the registry's active tab when targetID is empty.
func (o *Ops) resolve(targetID string) (*session.TabState, error) {
	if targetID == "" {
		if ts := o.reg.Active(); ts != nil {
			return ts, nil
		}
		return nil, browsionerr.New(browsionerr.KindSelectorNotFound, "no active tab")
	}
	ts := o.reg.Get(targetID)
	if ts == nil {
		return nil, browsionerr.New(browsionerr.KindSelectorNotFound, "unknown tab %q", targetID)
	}
	return ts, nil
}

// send marshals params (if any), issues the command against ts's CDP
// session, and unmarshals the result into out (if non-nil).
func (o *Ops) send(ctx context.Context, ts *session.TabState, method string, params, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	result, err := o.tr.Send(ctx, method, params, ts.SessionID)
	if err != nil {
		return err
	}
	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return browsionerr.New(browsionerr.KindCDPError, "unmarshal %s result: %v", method, err)
	}
	return nil
}

// unmarshalEventParams decodes a subscribed event's raw params into a
// concrete cdproto event type.
func unmarshalEventParams(raw json.RawMessage, out any) error {
	return json.Unmarshal(raw, out)
}

// decodeScriptResult unmarshals a {ok, error} page-script result (the
// convention used by every inline JS helper in this package) and turns a
// false ok into a SelectorNotFound error naming selector.
func decodeScriptResult(raw json.RawMessage, selector string) error {
	var res scriptResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return browsionerr.New(browsionerr.KindCDPError, "malformed script result: %v", err)
	}
	if !res.OK {
		return browsionerr.New(browsionerr.KindSelectorNotFound, "%s: %s", selector, res.Error)
	}
	return nil
}

// sendBrowser issues a browser-level command (no sessionId attached).
func (o *Ops) sendBrowser(ctx context.Context, method string, params, out any) error {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	result, err := o.tr.Send(ctx, method, params, "")
	if err != nil {
		return err
	}
	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return browsionerr.New(browsionerr.KindCDPError, "unmarshal %s result: %v", method, err)
	}
	return nil
}
