package ops

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// Cookie is the wire shape cookie operations expose, independent of
// cdproto's own field casing so HTTP/MCP consumers get a stable contract.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
	SameSite string `json:"same_site,omitempty"`
}

// GetCookies returns the cookies visible to the tab's current URL.
func (o *Ops) GetCookies(ctx context.Context, targetID string) ([]Cookie, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	var ret network.GetCookiesReturns
	if err := o.send(ctx, ts, "Network.getCookies", network.GetCookies(), &ret); err != nil {
		return nil, err
	}
	out := make([]Cookie, 0, len(ret.Cookies))
	for _, c := range ret.Cookies {
		out = append(out, Cookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Secure: c.Secure, HTTPOnly: c.HTTPOnly, SameSite: string(c.SameSite),
		})
	}
	return out, nil
}

// SetCookie installs a single cookie. SameSite is matched case-insensitively
// against CDP's Strict/Lax/None; an unrecognized value leaves CDP's
// browser default in effect rather than erroring, since most callers don't
// set it at all (open question resolved toward permissiveness here).
func (o *Ops) SetCookie(ctx context.Context, targetID string, c Cookie) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	params := network.SetCookie(c.Name, c.Value).
		WithDomain(c.Domain).WithPath(c.Path).WithSecure(c.Secure).WithHTTPOnly(c.HTTPOnly)
	switch strings.ToLower(c.SameSite) {
	case "strict":
		params = params.WithSameSite(network.CookieSameSiteStrict)
	case "lax":
		params = params.WithSameSite(network.CookieSameSiteLax)
	case "none":
		params = params.WithSameSite(network.CookieSameSiteNone)
	}
	var ret network.SetCookieReturns
	if err := o.send(ctx, ts, "Network.setCookie", params, &ret); err != nil {
		return err
	}
	if !ret.Success {
		return browsionerr.New(browsionerr.KindInvalidArgument, "set_cookie %q rejected by browser", c.Name)
	}
	return nil
}

// ClearCookies removes all cookies visible to the tab's browser context.
func (o *Ops) ClearCookies(ctx context.Context, targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	return o.send(ctx, ts, "Network.clearBrowserCookies", nil, nil)
}

const (
	getLocalStorageScript  = `JSON.stringify(Object.assign({}, window.localStorage))`
	clearLocalStorageScript = `window.localStorage.clear()`
)

// GetLocalStorage returns the tab's localStorage contents as a JSON object
// string, read directly out of the page rather than via a CDP storage
// domain (DOMStorage.getDOMStorageItems requires a storage id lookup for
// no benefit here since the tab is already attached).
func (o *Ops) GetLocalStorage(ctx context.Context, targetID string) (string, error) {
	raw, err := o.EvaluateJS(ctx, targetID, getLocalStorageScript)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", browsionerr.New(browsionerr.KindCDPError, "get_local_storage: malformed result: %v", err)
	}
	return s, nil
}

// ClearLocalStorage empties the tab's localStorage.
func (o *Ops) ClearLocalStorage(ctx context.Context, targetID string) error {
	_, err := o.EvaluateJS(ctx, targetID, clearLocalStorageScript)
	return err
}

// HandleDialog accepts or dismisses a pending JavaScript dialog
// (alert/confirm/prompt), optionally supplying prompt text.
func (o *Ops) HandleDialog(ctx context.Context, targetID string, accept bool, promptText string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	params := page.HandleJavaScriptDialog(accept)
	if promptText != "" {
		params = params.WithPromptText(promptText)
	}
	return o.send(ctx, ts, "Page.handleJavaScriptDialog", params, nil)
}
