package ops

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// Screenshot captures the visible viewport as PNG bytes.
func (o *Ops) Screenshot(ctx context.Context, targetID string) ([]byte, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	params := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng)
	var ret page.CaptureScreenshotReturns
	if err := o.send(ctx, ts, "Page.captureScreenshot", params, &ret); err != nil {
		return nil, err
	}
	return ret.Data, nil
}

// ScreenshotElement captures just the bounding box of selector's content
// box, via Page.captureScreenshot's clip rectangle rather than cropping a
// full-page capture client side.
func (o *Ops) ScreenshotElement(ctx context.Context, targetID, selector string) ([]byte, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}

	var docRet dom.GetDocumentReturns
	if err := o.send(ctx, ts, "DOM.getDocument", dom.GetDocument(), &docRet); err != nil {
		return nil, err
	}
	var qsRet dom.QuerySelectorReturns
	if err := o.send(ctx, ts, "DOM.querySelector", dom.QuerySelector(docRet.Root.NodeID, selector), &qsRet); err != nil {
		return nil, err
	}
	if qsRet.NodeID == 0 {
		return nil, browsionerr.New(browsionerr.KindSelectorNotFound, "no element matches %q", selector)
	}
	var boxRet dom.GetBoxModelReturns
	if err := o.send(ctx, ts, "DOM.getBoxModel", dom.GetBoxModel().WithNodeID(qsRet.NodeID), &boxRet); err != nil {
		return nil, err
	}
	q := boxRet.Model.Content
	if len(q) < 8 {
		return nil, browsionerr.New(browsionerr.KindCDPError, "malformed content quad for %q", selector)
	}
	minX, minY := q[0], q[1]
	maxX, maxY := q[0], q[1]
	for i := 0; i < 8; i += 2 {
		if q[i] < minX {
			minX = q[i]
		}
		if q[i] > maxX {
			maxX = q[i]
		}
		if q[i+1] < minY {
			minY = q[i+1]
		}
		if q[i+1] > maxY {
			maxY = q[i+1]
		}
	}

	clip := &page.Viewport{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY, Scale: 1}
	params := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).WithClip(clip)
	var ret page.CaptureScreenshotReturns
	if err := o.send(ctx, ts, "Page.captureScreenshot", params, &ret); err != nil {
		return nil, err
	}
	return ret.Data, nil
}

const pageTextScript = `document.body ? document.body.innerText : ""`

// GetPageText returns the rendered text content of the document body.
func (o *Ops) GetPageText(ctx context.Context, targetID string) (string, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return "", err
	}
	params := runtime.Evaluate(pageTextScript).WithReturnByValue(true)
	var ret runtime.EvaluateReturns
	if err := o.send(ctx, ts, "Runtime.evaluate", params, &ret); err != nil {
		return "", err
	}
	if ret.ExceptionDetails != nil {
		return "", browsionerr.New(browsionerr.KindCDPError, "get_page_text: %s", ret.ExceptionDetails.Text)
	}
	var text string
	if err := json.Unmarshal(ret.Result.Value, &text); err != nil {
		return "", browsionerr.New(browsionerr.KindCDPError, "get_page_text: malformed result: %v", err)
	}
	return text, nil
}

// GetAXTree returns the full accessibility tree for the tab, the raw input
// the semantic ref engine filters into short ref ids.
func (o *Ops) GetAXTree(ctx context.Context, targetID string) ([]*accessibility.Node, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	var ret accessibility.GetFullAXTreeReturns
	if err := o.send(ctx, ts, "Accessibility.getFullAXTree", accessibility.GetFullAXTree(), &ret); err != nil {
		return nil, err
	}
	return ret.Nodes, nil
}

// PageState is the composite snapshot backing the get_page_state operation:
// URL, title and ready state in one call instead of three separate
// round trips.
type PageState struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	ReadyState string `json:"ready_state"`
}

const readyStateScript = `document.readyState`

// GetPageState returns URL, title, and document.readyState together.
func (o *Ops) GetPageState(ctx context.Context, targetID string) (*PageState, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	params := runtime.Evaluate(readyStateScript).WithReturnByValue(true)
	var ret runtime.EvaluateReturns
	if err := o.send(ctx, ts, "Runtime.evaluate", params, &ret); err != nil {
		return nil, err
	}
	var readyState string
	if ret.ExceptionDetails == nil {
		_ = json.Unmarshal(ret.Result.Value, &readyState)
	}
	return &PageState{URL: ts.URL(), Title: ts.Title(), ReadyState: readyState}, nil
}

// ExtractData evaluates expr (expected to return a JSON-serializable
// value, typically built with document.querySelectorAll) and returns its
// decoded result, for structured scraping beyond plain text extraction.
func (o *Ops) ExtractData(ctx context.Context, targetID, expr string) (json.RawMessage, error) {
	return o.EvaluateJS(ctx, targetID, expr)
}

// screenshotToDataURL renders Screenshot's PNG output as a data: URL for
// inline previews. No HTTP handler calls it at present.
func screenshotToDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
