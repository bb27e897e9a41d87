package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

const pollInterval = 100 * time.Millisecond

const elementExistsScript = `!!document.querySelector(%s)`

// WaitForElement polls until selector matches an element in the DOM or ctx
// expires. CDP has no native "wait for selector" primitive; polling
// Runtime.evaluate is what every higher-level automation library (this
// one's teacher included) ultimately does underneath.
func (o *Ops) WaitForElement(ctx context.Context, targetID, selector string) error {
	selJSON, err := json.Marshal(selector)
	if err != nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "encode selector: %v", err)
	}
	expr := fmt.Sprintf(elementExistsScript, selJSON)
	return o.pollUntilTrue(ctx, targetID, expr, "wait_for_element")
}

const textContainsScriptTmpl = `(document.body && document.body.innerText || "").indexOf(%s) !== -1`

// WaitForText polls until the document body's rendered text contains the
// given substring or ctx expires.
func (o *Ops) WaitForText(ctx context.Context, targetID, text string) error {
	textJSON, err := json.Marshal(text)
	if err != nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "encode text: %v", err)
	}
	expr := fmt.Sprintf(textContainsScriptTmpl, textJSON)
	return o.pollUntilTrue(ctx, targetID, expr, "wait_for_text")
}

// WaitForURL polls the tab's tracked URL (not a script evaluation: URL
// updates come from navigation events, which is cheaper and can't be
// fooled by a same-document history.pushState the caller didn't mean)
// until it contains the given substring.
func (o *Ops) WaitForURL(ctx context.Context, targetID, urlSubstring string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	for {
		if strings.Contains(ts.URL(), urlSubstring) {
			return nil
		}
		select {
		case <-ctx.Done():
			return browsionerr.New(browsionerr.KindTimeout, "wait_for_url: %v", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// WaitForIdle blocks until targetID's inflight request count has stayed at
// zero for the network-idle window, without issuing any navigation itself;
// wait_for_navigation uses this to wait out an already-in-flight load a
// prior click or form submit triggered.
func (o *Ops) WaitForIdle(ctx context.Context, targetID string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	return o.waitNetworkIdle(ctx, ts)
}

func (o *Ops) pollUntilTrue(ctx context.Context, targetID, expr, opName string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	for {
		params := runtime.Evaluate(expr).WithReturnByValue(true)
		var ret runtime.EvaluateReturns
		if err := o.send(ctx, ts, "Runtime.evaluate", params, &ret); err != nil {
			return err
		}
		if ret.ExceptionDetails == nil {
			var ok bool
			if err := json.Unmarshal(ret.Result.Value, &ok); err == nil && ok {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return browsionerr.New(browsionerr.KindTimeout, "%s: %v", opName, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
