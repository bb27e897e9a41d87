package ops

import (
	"context"

	"github.com/chromedp/cdproto/page"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// FrameInfo describes one frame in a tab's frame tree.
type FrameInfo struct {
	FrameID  string `json:"frame_id"`
	ParentID string `json:"parent_id,omitempty"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
}

// GetFrames returns the tab's full frame tree flattened into a list.
func (o *Ops) GetFrames(ctx context.Context, targetID string) ([]FrameInfo, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	var ret page.GetFrameTreeReturns
	if err := o.send(ctx, ts, "Page.getFrameTree", page.GetFrameTree(), &ret); err != nil {
		return nil, err
	}

	var out []FrameInfo
	var walk func(n *page.FrameTree, parent string)
	walk = func(n *page.FrameTree, parent string) {
		if n == nil || n.Frame == nil {
			return
		}
		out = append(out, FrameInfo{
			FrameID:  string(n.Frame.ID),
			ParentID: parent,
			URL:      n.Frame.URL,
			Name:     n.Frame.Name,
		})
		for _, child := range n.ChildFrames {
			walk(child, string(n.Frame.ID))
		}
	}
	walk(ret.FrameTree, "")
	return out, nil
}

// SwitchFrame resolves frameID's Runtime execution context so subsequent
// evaluate_js calls scoped to this frame run in the right world. The
// execution context is learned from Runtime.executionContextCreated events
// the event loop records into TabState; if it hasn't arrived yet there is
// nothing to switch to.
func (o *Ops) SwitchFrame(targetID, frameID string) (int64, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return 0, err
	}
	ctxID, ok := ts.FrameExecutionContext(frameID)
	if !ok {
		return 0, browsionerr.New(browsionerr.KindSelectorNotFound, "no execution context known yet for frame %q", frameID)
	}
	return ctxID, nil
}
