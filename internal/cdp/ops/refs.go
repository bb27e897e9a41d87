package ops

import (
	"context"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/semref"
)

// requireSemRef guards the ref-based operations, since a bare Ops built
// without a semref.Engine (as in unit tests exercising only resolve/tabs)
// has nothing to resolve refs against.
func (o *Ops) requireSemRef() error {
	if o.semref == nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "semantic refs are not available on this client")
	}
	return nil
}

// DOMContext builds (or rebuilds) the semantic ref tree for targetID and
// returns it, the same tree get_ax_tree exposes but named for the route
// that doubles as an agent's map of what it can click_ref/type_ref.
func (o *Ops) DOMContext(ctx context.Context, targetID string) ([]*semref.RefNode, error) {
	if err := o.requireSemRef(); err != nil {
		return nil, err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	return o.semref.BuildTree(ctx, ts)
}

// ClickRef clicks the element a prior DOMContext/get_ax_tree call labelled
// refID, resolving its live coordinates fresh rather than trusting a
// possibly-stale cached rect.
func (o *Ops) ClickRef(ctx context.Context, targetID, refID string) error {
	if err := o.requireSemRef(); err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	x, y, err := o.semref.Resolve(ctx, ts, refID)
	if err != nil {
		return err
	}
	return o.ClickAt(ctx, targetID, x, y)
}

// TypeRef focuses refID's element via DOM.focus and types text into it.
func (o *Ops) TypeRef(ctx context.Context, targetID, refID, text string) error {
	if err := o.requireSemRef(); err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	if err := o.semref.Focus(ctx, ts, refID); err != nil {
		return err
	}
	return o.TypeText(ctx, targetID, text)
}

// FocusRef focuses refID's element without typing anything into it.
func (o *Ops) FocusRef(ctx context.Context, targetID, refID string) error {
	if err := o.requireSemRef(); err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	return o.semref.Focus(ctx, ts, refID)
}
