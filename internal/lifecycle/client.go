package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"

	"github.com/browsion/browsion-core/internal/cdp/discovery"
	"github.com/browsion/browsion-core/internal/cdp/intercept"
	"github.com/browsion/browsion-core/internal/cdp/ops"
	"github.com/browsion/browsion-core/internal/cdp/semref"
	"github.com/browsion/browsion-core/internal/cdp/session"
	"github.com/browsion/browsion-core/internal/cdp/transport"
	"github.com/browsion/browsion-core/internal/redact"
)

// Client is one running browser: the CDPClient of the data model. It owns
// the transport, the tab registry, and the higher layers (ops, semref,
// intercept) built on top of them.
type Client struct {
	ProfileID string

	Transport *transport.Transport
	Registry  *session.Registry
	Ops       *ops.Ops
	SemRef    *semref.Engine
	Intercept *intercept.Manager
}

// DialClient connects to a browser already listening on cdpPort, attaches
// in flatten mode to every existing page target, and wires the event loop
// that keeps TabState, console/network logs, and interception current.
// redactor scrubs captured request/response headers before they land in
// the network log; nil disables scrubbing.
func DialClient(ctx context.Context, profileID string, cdpPort int, commandTimeout time.Duration, logCapacity int, redactor *redact.Redactor) (*Client, error) {
	version, err := discovery.Probe(ctx, cdpPort)
	if err != nil {
		return nil, err
	}

	tr, err := transport.Dial(ctx, version.WebSocketDebuggerURL)
	if err != nil {
		return nil, err
	}

	reg := session.NewRegistry()
	sr := semref.New(tr)
	c := &Client{
		ProfileID: profileID,
		Transport: tr,
		Registry:  reg,
		Ops:       ops.New(tr, reg, sr, commandTimeout, logCapacity, redactor),
		SemRef:    sr,
		Intercept: intercept.New(tr),
	}
	tr.EventHook = c.handleEvent

	if _, err := tr.Send(ctx, "Target.setDiscoverTargets", target.SetDiscoverTargets(true), ""); err != nil {
		tr.Close()
		return nil, err
	}

	targets, err := discovery.ListTargets(ctx, cdpPort)
	if err != nil {
		tr.Close()
		return nil, err
	}
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		attachParams := target.AttachToTarget(target.ID(t.ID)).WithFlatten(true)
		raw, err := tr.Send(ctx, "Target.attachToTarget", attachParams, "")
		if err != nil {
			continue // a target that disappeared between list and attach is not fatal
		}
		var attachRet target.AttachToTargetReturns
		if err := json.Unmarshal(raw, &attachRet); err != nil {
			continue
		}
		ts := reg.GetOrCreate(t.ID, string(attachRet.SessionID))
		ts.SetURL(t.URL)
		ts.SetTitle(t.Title)
		c.enableDomains(ctx, ts.SessionID)
	}

	return c, nil
}

// enableDomains turns on the CDP domains every attached session needs
// events from: Page (navigation/lifecycle) and Network (inflight tracking).
// Log is enabled per tab by EnableConsoleCapture, and target discovery is
// switched on browser-wide in DialClient.
func (c *Client) enableDomains(ctx context.Context, sessionID string) {
	_, _ = c.Transport.Send(ctx, "Page.enable", page.Enable(), sessionID)
	_, _ = c.Transport.Send(ctx, "Network.enable", network.Enable(), sessionID)
}

// handleEvent is the transport.Transport EventHook: it runs for every
// event frame regardless of whether a Subscribe waiter also matched,
// updating TabState and the ring buffers that get/list operations read.
func (c *Client) handleEvent(ev transport.Event) {
	switch ev.Method {
	case "Target.targetCreated":
		c.onTargetCreated(ev)
	case "Target.targetDestroyed":
		c.onTargetDestroyed(ev)
	case "Target.attachedToTarget":
		c.onAttachedToTarget(ev)
	case "Target.targetInfoChanged":
		c.onTargetInfoChanged(ev)
	case "Page.frameNavigated":
		c.onFrameNavigated(ev)
	case "Page.frameStoppedLoading":
		c.onFrameStoppedLoading(ev)
	case "Network.requestWillBeSent":
		c.onRequestWillBeSent(ev)
	case "Network.loadingFinished", "Network.loadingFailed":
		c.onLoadingDone(ev)
	case "Network.responseReceived":
		c.onResponseReceived(ev)
	case "Log.entryAdded":
		c.onLogEntryAdded(ev)
	case "Runtime.executionContextCreated":
		c.onExecutionContextCreated(ev)
	case "Fetch.requestPaused":
		c.onRequestPaused(ev)
	}
}

func (c *Client) onTargetCreated(ev transport.Event) {
	var e target.EventTargetCreated
	if json.Unmarshal(ev.Params, &e) != nil || e.TargetInfo == nil || e.TargetInfo.Type != "page" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	attachParams := target.AttachToTarget(e.TargetInfo.TargetID).WithFlatten(true)
	raw, err := c.Transport.Send(ctx, "Target.attachToTarget", attachParams, "")
	if err != nil {
		return
	}
	var attachRet target.AttachToTargetReturns
	if json.Unmarshal(raw, &attachRet) != nil {
		return
	}
	ts := c.Registry.GetOrCreate(string(e.TargetInfo.TargetID), string(attachRet.SessionID))
	ts.SetURL(e.TargetInfo.URL)
	c.enableDomains(ctx, ts.SessionID)
}

func (c *Client) onTargetDestroyed(ev transport.Event) {
	var e target.EventTargetDestroyed
	if json.Unmarshal(ev.Params, &e) != nil {
		return
	}
	c.Registry.Remove(string(e.TargetID))
}

func (c *Client) onAttachedToTarget(ev transport.Event) {
	var e target.EventAttachedToTarget
	if json.Unmarshal(ev.Params, &e) != nil || e.TargetInfo == nil {
		return
	}
	c.Registry.GetOrCreate(string(e.TargetInfo.TargetID), string(e.SessionID))
}

// onTargetInfoChanged keeps TabState.Title current. The attach-time title
// in DialClient/onTargetCreated is frequently stale or empty (a freshly
// launched target starts on about:blank) and navigation events only carry
// the URL, so the title has to come from this event instead.
func (c *Client) onTargetInfoChanged(ev transport.Event) {
	var e target.EventTargetInfoChanged
	if json.Unmarshal(ev.Params, &e) != nil || e.TargetInfo == nil || e.TargetInfo.Type != "page" {
		return
	}
	ts := c.Registry.Get(string(e.TargetInfo.TargetID))
	if ts == nil {
		return
	}
	ts.SetTitle(e.TargetInfo.Title)
	ts.SetURL(e.TargetInfo.URL)
}

func (c *Client) onFrameNavigated(ev transport.Event) {
	var e page.EventFrameNavigated
	if json.Unmarshal(ev.Params, &e) != nil || e.Frame == nil || e.Frame.ParentID != "" {
		return // only main-frame navigations invalidate AX cache / reset state
	}
	ts := c.findBySession(ev.SessionID)
	if ts == nil {
		return
	}
	ts.SetURL(e.Frame.URL)
	ts.ClearAXCache()
}

func (c *Client) onFrameStoppedLoading(ev transport.Event) {
	var e page.EventFrameStoppedLoading
	if json.Unmarshal(ev.Params, &e) != nil {
		return
	}
	ts := c.findBySession(ev.SessionID)
	if ts == nil || string(e.FrameID) != ts.TargetID {
		return // a page target's main frame id equals its target id
	}
	ts.ResetInflight()
}

func (c *Client) onRequestWillBeSent(ev transport.Event) {
	ts := c.findBySession(ev.SessionID)
	if ts == nil {
		return
	}
	ts.IncrementInflight()

	var e network.EventRequestWillBeSent
	if json.Unmarshal(ev.Params, &e) == nil && e.Request != nil {
		c.Ops.RecordNetworkEntry(ts.TargetID, ops.NetworkEntry{
			RequestID: string(e.RequestID),
			Method:    e.Request.Method,
			URL:       e.Request.URL,
			Headers:   map[string]interface{}(e.Request.Headers),
			Timestamp: time.Now(),
		})
	}
}

func (c *Client) onLoadingDone(ev transport.Event) {
	ts := c.findBySession(ev.SessionID)
	if ts == nil {
		return
	}
	ts.DecrementInflight()
}

func (c *Client) onResponseReceived(ev transport.Event) {
	var e network.EventResponseReceived
	if json.Unmarshal(ev.Params, &e) != nil || e.Response == nil {
		return
	}
	ts := c.findBySession(ev.SessionID)
	if ts == nil {
		return
	}
	c.Ops.RecordNetworkEntry(ts.TargetID, ops.NetworkEntry{
		RequestID: string(e.RequestID),
		URL:       e.Response.URL,
		Status:    e.Response.Status,
		Headers:   map[string]interface{}(e.Response.Headers),
		Timestamp: time.Now(),
	})
}

func (c *Client) onLogEntryAdded(ev transport.Event) {
	var e log.EventEntryAdded
	if json.Unmarshal(ev.Params, &e) != nil || e.Entry == nil {
		return
	}
	ts := c.findBySession(ev.SessionID)
	if ts == nil || !ts.ConsoleCaptureEnabled() {
		return
	}
	c.Ops.RecordConsoleEntry(ts.TargetID, ops.ConsoleEntry{
		Level:     string(e.Entry.Level),
		Text:      e.Entry.Text,
		Timestamp: time.Now(),
	})
}

func (c *Client) onExecutionContextCreated(ev transport.Event) {
	var e struct {
		Context struct {
			ID    int64 `json:"id"`
			AuxData struct {
				FrameID string `json:"frameId"`
			} `json:"auxData"`
		} `json:"context"`
	}
	if json.Unmarshal(ev.Params, &e) != nil {
		return
	}
	ts := c.findBySession(ev.SessionID)
	if ts == nil || e.Context.AuxData.FrameID == "" {
		return
	}
	ts.SetFrameExecutionContext(e.Context.AuxData.FrameID, e.Context.ID)
}

func (c *Client) onRequestPaused(ev transport.Event) {
	var e fetch.EventRequestPaused
	if json.Unmarshal(ev.Params, &e) != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = c.Intercept.HandleRequestPaused(ctx, ev.SessionID, e)
}

// findBySession is a linear scan over attached tabs; flatten mode
// typically multiplexes a handful of tabs per browser, so this is cheap
// compared to maintaining a second sessionID-keyed index that could drift
// from the registry's targetID-keyed one.
func (c *Client) findBySession(sessionID string) *session.TabState {
	if sessionID == "" {
		return nil
	}
	for _, targetID := range c.Registry.List() {
		ts := c.Registry.Get(targetID)
		if ts != nil && ts.SessionID == sessionID {
			return ts
		}
	}
	return nil
}

// Close tears down the transport, disconnecting every attached session.
func (c *Client) Close() error {
	return c.Transport.Close()
}
