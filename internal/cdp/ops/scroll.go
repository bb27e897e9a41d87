package ops

import (
	"context"
	"encoding/json"
	"fmt"
)

// Scroll scrolls the page (or the document's scrolling element) by a fixed
// pixel delta, via window.scrollBy so it works the same as a user's wheel
// scroll rather than jumping to an absolute offset.
func (o *Ops) Scroll(ctx context.Context, targetID string, dx, dy float64) error {
	expr := fmt.Sprintf("window.scrollBy(%f, %f)", dx, dy)
	_, err := o.EvaluateJS(ctx, targetID, expr)
	return err
}

// ScrollElement scrolls the element matching selector by a pixel delta on
// its own scroll container, for scrollable panels nested inside the page.
func (o *Ops) ScrollElement(ctx context.Context, targetID, selector string, dx, dy float64) error {
	sel, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf(`(function(){
  var el = document.querySelector(%s);
  if (!el) { return {ok: false, error: "no element matches selector"}; }
  el.scrollBy(%f, %f);
  return {ok: true};
})()`, sel, dx, dy)
	raw, err := o.EvaluateJS(ctx, targetID, expr)
	if err != nil {
		return err
	}
	return decodeScriptResult(raw, selector)
}

// ScrollIntoView scrolls the nearest scrollable ancestor so selector's
// element is visible in the viewport, matching Element.scrollIntoView's
// "nearest" block alignment so the page doesn't jump further than needed.
func (o *Ops) ScrollIntoView(ctx context.Context, targetID, selector string) error {
	sel, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	expr := fmt.Sprintf(`(function(){
  var el = document.querySelector(%s);
  if (!el) { return {ok: false, error: "no element matches selector"}; }
  el.scrollIntoView({block: "nearest", inline: "nearest"});
  return {ok: true};
})()`, sel)
	raw, err := o.EvaluateJS(ctx, targetID, expr)
	if err != nil {
		return err
	}
	return decodeScriptResult(raw, selector)
}
