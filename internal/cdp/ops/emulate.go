package ops

import (
	"context"

	"github.com/chromedp/cdproto/emulation"
)

// EmulateOptions configures device/viewport/network emulation for a tab.
// Zero values leave the corresponding setting untouched except for Width
// and Height, which are required whenever DeviceMetrics emulation is used.
type EmulateOptions struct {
	Width             int64   `json:"width"`
	Height            int64   `json:"height"`
	DeviceScaleFactor float64 `json:"device_scale_factor"`
	Mobile            bool    `json:"mobile"`
	UserAgent         string  `json:"user_agent,omitempty"`
}

// Emulate applies viewport and user-agent overrides to a tab, the
// primitive behind device-emulation presets (client code supplies the
// concrete width/height/UA for a named device).
func (o *Ops) Emulate(ctx context.Context, targetID string, opts EmulateOptions) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}

	if opts.Width > 0 && opts.Height > 0 {
		metrics := emulation.SetDeviceMetricsOverride(opts.Width, opts.Height, opts.DeviceScaleFactor, opts.Mobile)
		if err := o.send(ctx, ts, "Emulation.setDeviceMetricsOverride", metrics, nil); err != nil {
			return err
		}
	}
	if opts.UserAgent != "" {
		ua := emulation.SetUserAgentOverride(opts.UserAgent)
		if err := o.send(ctx, ts, "Emulation.setUserAgentOverride", ua, nil); err != nil {
			return err
		}
	}
	return nil
}

// ClearEmulation removes any device-metrics override, returning the tab to
// the browser's native viewport.
func (o *Ops) ClearEmulation(ctx context.Context, targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	return o.send(ctx, ts, "Emulation.clearDeviceMetricsOverride", emulation.ClearDeviceMetricsOverride(), nil)
}
