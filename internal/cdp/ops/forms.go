package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// selectOptionScript sets a <select>'s value by option text or value and
// fires a change event, since CDP has no native "select option" primitive.
const selectOptionScript = `(function(sel, value){
  var el = document.querySelector(sel);
  if (!el) { return {ok: false, error: "no element matches selector"}; }
  var matched = false;
  for (var i = 0; i < el.options.length; i++) {
    var opt = el.options[i];
    if (opt.value === value || opt.textContent.trim() === value) {
      el.selectedIndex = i;
      matched = true;
      break;
    }
  }
  if (!matched) { return {ok: false, error: "no option matches " + value}; }
  el.dispatchEvent(new Event('change', {bubbles: true}));
  return {ok: true};
})(%s, %s)`

type scriptResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SelectOption sets a <select> element's chosen option by visible text or
// underlying value.
func (o *Ops) SelectOption(ctx context.Context, targetID, selector, value string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}
	selJSON, err := json.Marshal(selector)
	if err != nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "encode selector: %v", err)
	}
	valJSON, err := json.Marshal(value)
	if err != nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "encode value: %v", err)
	}
	expr := fmt.Sprintf(selectOptionScript, selJSON, valJSON)

	var ret runtime.EvaluateReturns
	params := runtime.Evaluate(expr).WithReturnByValue(true)
	if err := o.send(ctx, ts, "Runtime.evaluate", params, &ret); err != nil {
		return err
	}
	if ret.ExceptionDetails != nil {
		return browsionerr.New(browsionerr.KindCDPError, "select_option: %s", ret.ExceptionDetails.Text)
	}
	var res scriptResult
	if err := json.Unmarshal(ret.Result.Value, &res); err != nil {
		return browsionerr.New(browsionerr.KindCDPError, "select_option: malformed script result: %v", err)
	}
	if !res.OK {
		return browsionerr.New(browsionerr.KindSelectorNotFound, "select_option: %s", res.Error)
	}
	return nil
}

// UploadFile sets the file list of an <input type="file"> element via
// DOM.setFileInputFiles, the only CDP primitive that can populate a file
// input (synthetic input events cannot, for browser security reasons).
func (o *Ops) UploadFile(ctx context.Context, targetID, selector string, paths []string) error {
	ts, err := o.resolve(targetID)
	if err != nil {
		return err
	}

	var docRet dom.GetDocumentReturns
	if err := o.send(ctx, ts, "DOM.getDocument", dom.GetDocument(), &docRet); err != nil {
		return err
	}
	var qsRet dom.QuerySelectorReturns
	if err := o.send(ctx, ts, "DOM.querySelector", dom.QuerySelector(docRet.Root.NodeID, selector), &qsRet); err != nil {
		return err
	}
	if qsRet.NodeID == 0 {
		return browsionerr.New(browsionerr.KindSelectorNotFound, "no element matches %q", selector)
	}

	params := dom.SetFileInputFiles(paths).WithNodeID(qsRet.NodeID)
	return o.send(ctx, ts, "DOM.setFileInputFiles", params, nil)
}
