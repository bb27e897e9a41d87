package ops

import (
	"context"

	"github.com/chromedp/cdproto/target"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// TabInfo is the shape list_tabs reports for each known tab.
type TabInfo struct {
	TargetID string `json:"target_id"`
	StableID string `json:"stable_id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
}

// ListTabs reports every tab currently attached in flatten mode.
func (o *Ops) ListTabs() []TabInfo {
	active := o.reg.ActiveTargetID()
	ids := o.reg.List()
	out := make([]TabInfo, 0, len(ids))
	for _, id := range ids {
		ts := o.reg.Get(id)
		if ts == nil {
			continue
		}
		out = append(out, TabInfo{
			TargetID: id,
			StableID: o.reg.StableID(id),
			URL:      ts.URL(),
			Title:    ts.Title(),
			Active:   id == active,
		})
	}
	return out
}

// NewTab opens a tab at url (or about:blank) and attaches to it in
// flatten mode, mirroring the attach the lifecycle manager performs for
// tabs discovered at CDPClient startup.
func (o *Ops) NewTab(ctx context.Context, url string) (string, error) {
	if url == "" {
		url = "about:blank"
	}
	var createRet target.CreateTargetReturns
	if err := o.sendBrowser(ctx, "Target.createTarget", target.CreateTarget(url), &createRet); err != nil {
		return "", err
	}

	attachParams := target.AttachToTarget(createRet.TargetID).WithFlatten(true)
	var attachRet target.AttachToTargetReturns
	if err := o.sendBrowser(ctx, "Target.attachToTarget", attachParams, &attachRet); err != nil {
		return "", err
	}

	ts := o.reg.GetOrCreate(string(createRet.TargetID), string(attachRet.SessionID))
	ts.SetURL(url)
	o.reg.SetActive(string(createRet.TargetID))
	return string(createRet.TargetID), nil
}

// SwitchTab makes targetID the active tab for subsequent unscoped
// operations. Returns an error if the tab is unknown.
func (o *Ops) SwitchTab(targetID string) error {
	if o.reg.Get(targetID) == nil {
		return browsionerr.New(browsionerr.KindSelectorNotFound, "unknown tab %q", targetID)
	}
	o.reg.SetActive(targetID)
	return nil
}

// CloseTab closes a tab via Target.closeTarget and drops it from the
// registry; Target.detachedFromTarget/targetDestroyed events (handled by
// the lifecycle manager's event loop) would otherwise do the same
// asynchronously, but callers expect close_tab to be synchronous.
func (o *Ops) CloseTab(ctx context.Context, targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	if err := o.sendBrowser(ctx, "Target.closeTarget", target.CloseTarget(target.ID(ts.TargetID)), nil); err != nil {
		return err
	}
	o.reg.Remove(ts.TargetID)
	return nil
}

// WaitForNewTab blocks until a tab beyond the ones already known at call
// time appears (e.g. a window.open triggered by a click), or ctx expires.
func (o *Ops) WaitForNewTab(ctx context.Context) (string, error) {
	before := make(map[string]bool)
	for _, id := range o.reg.List() {
		before[id] = true
	}

	for {
		waiter := o.tr.Subscribe("", "Target.targetCreated")
		ev, err := waiter.Wait(ctx)
		if err != nil {
			return "", err
		}

		var created target.EventTargetCreated
		if err := unmarshalEventParams(ev.Params, &created); err != nil {
			return "", browsionerr.New(browsionerr.KindCDPError, "wait_for_new_tab: malformed event: %v", err)
		}
		if created.TargetInfo == nil || created.TargetInfo.Type != "page" || before[string(created.TargetInfo.TargetID)] {
			continue
		}
		return string(created.TargetInfo.TargetID), nil
	}
}
