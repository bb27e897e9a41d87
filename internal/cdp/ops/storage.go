package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

const (
	getSessionStorageScript   = `JSON.stringify(Object.assign({}, window.sessionStorage))`
	clearSessionStorageScript = `window.sessionStorage.clear()`
	setStorageScriptTmpl      = `(function(data){
  var entries = JSON.parse(data);
  for (var k in entries) { window.%s.setItem(k, entries[k]); }
  return true;
})(%s)`
)

// StorageKind selects which browser storage a storage/:type route targets.
type StorageKind string

const (
	StorageLocal   StorageKind = "local"
	StorageSession StorageKind = "session"
)

// GetStorage returns the JSON-encoded contents of the tab's localStorage or
// sessionStorage, the handler behind GET /api/browser/:id/storage/:type.
func (o *Ops) GetStorage(ctx context.Context, targetID string, kind StorageKind) (string, error) {
	switch kind {
	case StorageLocal:
		return o.GetLocalStorage(ctx, targetID)
	case StorageSession:
		raw, err := o.EvaluateJS(ctx, targetID, getSessionStorageScript)
		if err != nil {
			return "", err
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", browsionerr.New(browsionerr.KindCDPError, "get_storage(session): malformed result: %v", err)
		}
		return s, nil
	default:
		return "", browsionerr.New(browsionerr.KindInvalidArgument, "unknown storage kind %q", kind)
	}
}

// SetStorage merges the keys of a JSON object into the tab's localStorage or
// sessionStorage, leaving keys not present in data untouched.
func (o *Ops) SetStorage(ctx context.Context, targetID string, kind StorageKind, data string) error {
	var store string
	switch kind {
	case StorageLocal:
		store = "localStorage"
	case StorageSession:
		store = "sessionStorage"
	default:
		return browsionerr.New(browsionerr.KindInvalidArgument, "unknown storage kind %q", kind)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return browsionerr.New(browsionerr.KindInvalidArgument, "encode storage payload: %v", err)
	}
	expr := fmt.Sprintf(setStorageScriptTmpl, store, dataJSON)
	_, err = o.EvaluateJS(ctx, targetID, expr)
	return err
}

// ClearStorage empties the tab's localStorage or sessionStorage.
func (o *Ops) ClearStorage(ctx context.Context, targetID string, kind StorageKind) error {
	switch kind {
	case StorageLocal:
		return o.ClearLocalStorage(ctx, targetID)
	case StorageSession:
		_, err := o.EvaluateJS(ctx, targetID, clearSessionStorageScript)
		return err
	default:
		return browsionerr.New(browsionerr.KindInvalidArgument, "unknown storage kind %q", kind)
	}
}
