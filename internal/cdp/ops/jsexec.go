package ops

import (
	"context"
	"encoding/json"

	"github.com/chromedp/cdproto/runtime"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// EvaluateJS runs expr in the tab's main world and returns its JSON-decoded
// result. Arguments are never string-concatenated into expr; every value
// that needs to reach the page crosses the wire JSON-encoded by the caller
// beforehand, so a value containing a quote or backslash can't break out
// of the generated expression.
func (o *Ops) EvaluateJS(ctx context.Context, targetID, expr string) (json.RawMessage, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	params := runtime.Evaluate(expr).
		WithReturnByValue(true).
		WithAwaitPromise(true)

	var ret runtime.EvaluateReturns
	if err := o.send(ctx, ts, "Runtime.evaluate", params, &ret); err != nil {
		return nil, err
	}
	if ret.ExceptionDetails != nil {
		return nil, browsionerr.New(browsionerr.KindCDPError, "evaluate_js: %s", ret.ExceptionDetails.Text)
	}
	if ret.Result == nil {
		return json.RawMessage("null"), nil
	}
	return ret.Result.Value, nil
}
