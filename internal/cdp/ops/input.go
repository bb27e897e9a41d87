package ops

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// nodeCenter resolves a CSS selector to the viewport coordinates of its
// content box center, the point every selector-based pointer op dispatches
// to. Grounded on DOM.querySelector + DOM.getBoxModel rather than the
// deprecated DOM.getContentQuads bridging chromedp itself once used.
func (o *Ops) nodeCenter(ctx context.Context, targetID, selector string) (x, y float64, err error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return 0, 0, err
	}

	var docRet dom.GetDocumentReturns
	if err := o.send(ctx, ts, "DOM.getDocument", dom.GetDocument(), &docRet); err != nil {
		return 0, 0, err
	}
	var qsRet dom.QuerySelectorReturns
	if err := o.send(ctx, ts, "DOM.querySelector", dom.QuerySelector(docRet.Root.NodeID, selector), &qsRet); err != nil {
		return 0, 0, err
	}
	if qsRet.NodeID == 0 {
		return 0, 0, browsionerr.New(browsionerr.KindSelectorNotFound, "no element matches %q", selector)
	}

	var boxRet dom.GetBoxModelReturns
	if err := o.send(ctx, ts, "DOM.getBoxModel", dom.GetBoxModel().WithNodeID(qsRet.NodeID), &boxRet); err != nil {
		return 0, 0, browsionerr.New(browsionerr.KindSelectorNotFound, "%q has no box model (not rendered): %v", selector, err)
	}
	q := boxRet.Model.Content
	if len(q) < 8 {
		return 0, 0, browsionerr.New(browsionerr.KindCDPError, "malformed content quad for %q", selector)
	}
	x = (q[0] + q[2] + q[4] + q[6]) / 4
	y = (q[1] + q[3] + q[5] + q[7]) / 4
	return x, y, nil
}

// Click dispatches a single left-button click at the center of selector.
func (o *Ops) Click(ctx context.Context, targetID, selector string) error {
	x, y, err := o.nodeCenter(ctx, targetID, selector)
	if err != nil {
		return err
	}
	return o.ClickAt(ctx, targetID, x, y)
}

// ClickAt dispatches a left-button click at fixed viewport coordinates.
func (o *Ops) ClickAt(ctx context.Context, targetID string, x, y float64) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	press := input.DispatchMouseEvent(input.MousePressed, x, y).
		WithButton(input.Left).WithClickCount(1)
	if err := o.send(ctx, ts, "Input.dispatchMouseEvent", press, nil); err != nil {
		return err
	}
	release := input.DispatchMouseEvent(input.MouseReleased, x, y).
		WithButton(input.Left).WithClickCount(1)
	return o.send(ctx, ts, "Input.dispatchMouseEvent", release, nil)
}

// DoubleClick dispatches two rapid clicks at selector's center.
func (o *Ops) DoubleClick(ctx context.Context, targetID, selector string) error {
	x, y, err := o.nodeCenter(ctx, targetID, selector)
	if err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	for _, count := range []int64{1, 2} {
		press := input.DispatchMouseEvent(input.MousePressed, x, y).WithButton(input.Left).WithClickCount(count)
		if err := o.send(ctx, ts, "Input.dispatchMouseEvent", press, nil); err != nil {
			return err
		}
		release := input.DispatchMouseEvent(input.MouseReleased, x, y).WithButton(input.Left).WithClickCount(count)
		if err := o.send(ctx, ts, "Input.dispatchMouseEvent", release, nil); err != nil {
			return err
		}
	}
	return nil
}

// RightClick dispatches a right-button click at selector's center.
func (o *Ops) RightClick(ctx context.Context, targetID, selector string) error {
	x, y, err := o.nodeCenter(ctx, targetID, selector)
	if err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	press := input.DispatchMouseEvent(input.MousePressed, x, y).WithButton(input.Right).WithClickCount(1)
	if err := o.send(ctx, ts, "Input.dispatchMouseEvent", press, nil); err != nil {
		return err
	}
	release := input.DispatchMouseEvent(input.MouseReleased, x, y).WithButton(input.Right).WithClickCount(1)
	return o.send(ctx, ts, "Input.dispatchMouseEvent", release, nil)
}

// Hover moves the mouse over selector without clicking.
func (o *Ops) Hover(ctx context.Context, targetID, selector string) error {
	x, y, err := o.nodeCenter(ctx, targetID, selector)
	if err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	move := input.DispatchMouseEvent(input.MouseMoved, x, y)
	return o.send(ctx, ts, "Input.dispatchMouseEvent", move, nil)
}

// Drag moves the mouse from one selector's center to another's while the
// left button is held, for drag-and-drop widgets that don't use the native
// HTML5 DnD events.
func (o *Ops) Drag(ctx context.Context, targetID, fromSelector, toSelector string) error {
	fx, fy, err := o.nodeCenter(ctx, targetID, fromSelector)
	if err != nil {
		return err
	}
	tx, ty, err := o.nodeCenter(ctx, targetID, toSelector)
	if err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}

	press := input.DispatchMouseEvent(input.MousePressed, fx, fy).WithButton(input.Left).WithClickCount(1)
	if err := o.send(ctx, ts, "Input.dispatchMouseEvent", press, nil); err != nil {
		return err
	}

	const steps = 8
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		x := fx + (tx-fx)*frac
		y := fy + (ty-fy)*frac
		move := input.DispatchMouseEvent(input.MouseMoved, x, y).WithButton(input.Left)
		if err := o.send(ctx, ts, "Input.dispatchMouseEvent", move, nil); err != nil {
			return err
		}
	}

	release := input.DispatchMouseEvent(input.MouseReleased, tx, ty).WithButton(input.Left).WithClickCount(1)
	return o.send(ctx, ts, "Input.dispatchMouseEvent", release, nil)
}

// TypeText types a string as a sequence of key events at the current
// focus, one Input.dispatchKeyEvent triplet (rawKeyDown/char/keyUp) per
// rune. Never combines keyDown with the text field on the same event:
// doing so makes Chrome synthesize a second keypress for the same
// character, duplicating input into the focused field.
func (o *Ops) TypeText(ctx context.Context, targetID, text string) error {
	return o.typeTextDelayed(ctx, targetID, text, 0)
}

// SlowType is TypeText with a fixed delay between characters, for pages
// whose JS listens for realistic typing cadence (e.g. debounced search).
func (o *Ops) SlowType(ctx context.Context, targetID, text string, delay time.Duration) error {
	return o.typeTextDelayed(ctx, targetID, text, delay)
}

func (o *Ops) typeTextDelayed(ctx context.Context, targetID, text string, delay time.Duration) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	for i, r := range text {
		s := string(r)
		down := input.DispatchKeyEvent(input.KeyRawKeyDown)
		if err := o.send(ctx, ts, "Input.dispatchKeyEvent", down, nil); err != nil {
			return err
		}
		char := input.DispatchKeyEvent(input.KeyChar).WithText(s).WithUnmodifiedText(s)
		if err := o.send(ctx, ts, "Input.dispatchKeyEvent", char, nil); err != nil {
			return err
		}
		up := input.DispatchKeyEvent(input.KeyKeyUp)
		if err := o.send(ctx, ts, "Input.dispatchKeyEvent", up, nil); err != nil {
			return err
		}
		if delay > 0 && i+utf8.RuneLen(r) < len(text) {
			select {
			case <-ctx.Done():
				return browsionerr.New(browsionerr.KindTimeout, "slow_type interrupted: %v", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return nil
}

// PressKey dispatches a single named key (e.g. "Enter", "Tab", "Escape")
// as a rawKeyDown/keyUp pair with no text, matching non-printable keys.
func (o *Ops) PressKey(ctx context.Context, targetID, key string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	down := input.DispatchKeyEvent(input.KeyRawKeyDown).WithKey(key).WithCode(key)
	if err := o.send(ctx, ts, "Input.dispatchKeyEvent", down, nil); err != nil {
		return fmt.Errorf("press_key %q down: %w", key, err)
	}
	up := input.DispatchKeyEvent(input.KeyKeyUp).WithKey(key).WithCode(key)
	if err := o.send(ctx, ts, "Input.dispatchKeyEvent", up, nil); err != nil {
		return fmt.Errorf("press_key %q up: %w", key, err)
	}
	return nil
}

// Tap dispatches a touch tap at selector's center.
func (o *Ops) Tap(ctx context.Context, targetID, selector string) error {
	x, y, err := o.nodeCenter(ctx, targetID, selector)
	if err != nil {
		return err
	}
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	point := []*input.TouchPoint{{X: x, Y: y}}
	start := input.DispatchTouchEvent(input.TouchStart, point)
	if err := o.send(ctx, ts, "Input.dispatchTouchEvent", start, nil); err != nil {
		return err
	}
	end := input.DispatchTouchEvent(input.TouchEnd, []*input.TouchPoint{})
	return o.send(ctx, ts, "Input.dispatchTouchEvent", end, nil)
}

// Swipe dispatches a touch drag from (x1,y1) to (x2,y2) over a handful of
// intermediate touchMove events.
func (o *Ops) Swipe(ctx context.Context, targetID string, x1, y1, x2, y2 float64) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}

	start := input.DispatchTouchEvent(input.TouchStart, []*input.TouchPoint{{X: x1, Y: y1}})
	if err := o.send(ctx, ts, "Input.dispatchTouchEvent", start, nil); err != nil {
		return err
	}

	const steps = 6
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		x := x1 + (x2-x1)*frac
		y := y1 + (y2-y1)*frac
		move := input.DispatchTouchEvent(input.TouchMove, []*input.TouchPoint{{X: x, Y: y}})
		if err := o.send(ctx, ts, "Input.dispatchTouchEvent", move, nil); err != nil {
			return err
		}
	}

	end := input.DispatchTouchEvent(input.TouchEnd, []*input.TouchPoint{})
	return o.send(ctx, ts, "Input.dispatchTouchEvent", end, nil)
}
