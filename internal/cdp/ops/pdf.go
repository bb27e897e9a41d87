package ops

import (
	"context"

	"github.com/chromedp/cdproto/page"
)

// PrintToPDF renders the tab's current document to PDF bytes.
func (o *Ops) PrintToPDF(ctx context.Context, targetID string) ([]byte, error) {
	ts, err := o.resolve(targetID)
	if err != nil {
		return nil, err
	}
	params := page.PrintToPDF().WithPrintBackground(true)
	var ret page.PrintToPDFReturns
	if err := o.send(ctx, ts, "Page.printToPDF", params, &ret); err != nil {
		return nil, err
	}
	return ret.Data, nil
}
