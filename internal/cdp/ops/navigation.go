package ops

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/session"
	"github.com/browsion/browsion-core/internal/cdp/transport"
)

// WaitUntil selects when navigate_wait considers a navigation complete.
type WaitUntil string

const (
	WaitNone               WaitUntil = "none"
	WaitLoad               WaitUntil = "load"
	WaitDOMContentLoaded   WaitUntil = "domcontentloaded"
	WaitNetworkIdle        WaitUntil = "networkidle"
	networkIdleWindow                = 500 * time.Millisecond
	networkIdlePollPeriod            = 50 * time.Millisecond
)

// Navigate issues Page.navigate and returns as soon as the browser has
// accepted the navigation, without waiting for any load signal.
func (o *Ops) Navigate(ctx context.Context, targetID, url string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	var ret page.NavigateReturns
	if err := o.send(ctx, ts, "Page.navigate", page.Navigate(url), &ret); err != nil {
		return err
	}
	if ret.ErrorText != "" {
		return browsionerr.New(browsionerr.KindCDPError, "navigate %s: %s", url, ret.ErrorText)
	}
	ts.SetURL(url)
	ts.ClearAXCache()
	ts.ResetInflight()
	return nil
}

// NavigateWait navigates and blocks until waitUntil is satisfied or ctx
// expires. Subscriptions are registered before the navigate command is
// sent so that a fast-firing event can't race ahead of the waiter.
func (o *Ops) NavigateWait(ctx context.Context, targetID, url string, waitUntil WaitUntil) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}

	var loadWaiter, domWaiter *transport.Waiter
	switch waitUntil {
	case WaitLoad:
		loadWaiter = o.tr.Subscribe(ts.SessionID, "Page.loadEventFired")
	case WaitDOMContentLoaded:
		domWaiter = o.tr.Subscribe(ts.SessionID, "Page.domContentEventFired")
	}

	var ret page.NavigateReturns
	if err := o.send(ctx, ts, "Page.navigate", page.Navigate(url), &ret); err != nil {
		return err
	}
	if ret.ErrorText != "" {
		return browsionerr.New(browsionerr.KindCDPError, "navigate %s: %s", url, ret.ErrorText)
	}
	ts.SetURL(url)
	ts.ClearAXCache()
	ts.ResetInflight()

	switch waitUntil {
	case WaitNone:
		return nil
	case WaitLoad:
		return o.awaitEvent(ctx, loadWaiter)
	case WaitDOMContentLoaded:
		return o.awaitEvent(ctx, domWaiter)
	case WaitNetworkIdle:
		return o.waitNetworkIdle(ctx, ts)
	default:
		return browsionerr.New(browsionerr.KindInvalidArgument, "unknown wait_until %q", waitUntil)
	}
}

func (o *Ops) awaitEvent(ctx context.Context, w *transport.Waiter) error {
	if w == nil {
		return nil
	}
	_, err := w.Wait(ctx)
	return err
}

// waitNetworkIdle blocks until the tab's inflight counter has stayed at
// zero for networkIdleWindow, or ctx expires.
func (o *Ops) waitNetworkIdle(ctx context.Context, ts *session.TabState) error {
	deadline := time.Now().Add(networkIdleWindow)
	for {
		select {
		case <-ctx.Done():
			return browsionerr.New(browsionerr.KindTimeout, "waiting for network idle: %v", ctx.Err())
		case <-time.After(networkIdlePollPeriod):
		}
		if ts.Inflight() > 0 {
			deadline = time.Now().Add(networkIdleWindow)
			continue
		}
		if time.Now().After(deadline) {
			return nil
		}
	}
}

// GoBack steps one entry back in the tab's navigation history.
func (o *Ops) GoBack(ctx context.Context, targetID string) error {
	return o.navigateHistory(ctx, targetID, -1)
}

// GoForward steps one entry forward in the tab's navigation history.
func (o *Ops) GoForward(ctx context.Context, targetID string) error {
	return o.navigateHistory(ctx, targetID, 1)
}

func (o *Ops) navigateHistory(ctx context.Context, targetID string, direction int) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	var hist page.GetNavigationHistoryReturns
	if err := o.send(ctx, ts, "Page.getNavigationHistory", nil, &hist); err != nil {
		return err
	}
	target := int(hist.CurrentIndex) + direction
	if target < 0 || target >= len(hist.Entries) {
		return browsionerr.New(browsionerr.KindInvalidArgument, "no navigation history entry in that direction")
	}
	entry := hist.Entries[target]
	navWaiter := o.tr.Subscribe(ts.SessionID, "Page.frameNavigated")
	if err := o.send(ctx, ts, "Page.navigateToHistoryEntry", page.NavigateToHistoryEntry(entry.ID), nil); err != nil {
		return err
	}
	ts.SetURL(entry.URL)
	ts.ClearAXCache()
	ts.ResetInflight()
	return o.awaitEvent(ctx, navWaiter)
}

// Reload reloads the tab's current document.
func (o *Ops) Reload(ctx context.Context, targetID string, ignoreCache bool) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	params := page.Reload().WithIgnoreCache(ignoreCache)
	if err := o.send(ctx, ts, "Page.reload", params, nil); err != nil {
		return err
	}
	ts.ClearAXCache()
	ts.ResetInflight()
	return nil
}

// GetURL returns the tab's last known URL without round-tripping to the
// browser: navigation commands and frameNavigated events keep it current.
func (o *Ops) GetURL(targetID string) (string, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return "", err
	}
	return ts.URL(), nil
}

// GetPageTitle returns the tab's last known title.
func (o *Ops) GetPageTitle(targetID string) (string, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return "", err
	}
	return ts.Title(), nil
}
