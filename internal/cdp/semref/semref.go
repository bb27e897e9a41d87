// Package semref implements C4: a compact, stable, page-wide labelling of
// interactive elements built from the accessibility tree, so that agents
// can address "the button named Submit" as e7 instead of a brittle CSS
// selector that breaks across markup revisions.
package semref

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/session"
)

// interactiveRoles is the set of AX roles kept even when unnamed, because
// the role alone identifies an actionable control.
var interactiveRoles = map[string]bool{
	"button": true, "link": true, "textbox": true, "combobox": true,
	"checkbox": true, "radio": true, "menuitem": true, "tab": true,
	"switch": true, "slider": true, "searchbox": true, "spinbutton": true,
}

// structuralRoles is the set of roles kept only when they carry a name —
// landmarks and headings are useful waypoints, not actions.
var structuralRoles = map[string]bool{
	"heading": true, "navigation": true, "main": true, "banner": true,
	"contentinfo": true, "region": true, "form": true, "search": true,
}

var discardedRoles = map[string]bool{
	"none": true, "generic": true, "InlineTextBox": true,
}

// RefNode is one entry of the filtered, ref-id-labelled tree handed back
// to callers of get_ax_tree and consumed by click_ref/type_ref/focus_ref.
type RefNode struct {
	RefID    string     `json:"ref_id"`
	Role     string     `json:"role"`
	Name     string     `json:"name,omitempty"`
	Value    string     `json:"value,omitempty"`
	Children []*RefNode `json:"children,omitempty"`
}

// transport is the minimal surface semref needs from the CDP transport, so
// this package doesn't import transport directly and tests can fake it.
type transport interface {
	Send(ctx context.Context, method string, params any, sessionID string) (json.RawMessage, error)
}

// Engine builds and resolves semantic refs for one CDPClient's tabs.
type Engine struct {
	tr transport
}

// New builds a semantic ref engine bound to a transport.
func New(tr transport) *Engine {
	return &Engine{tr: tr}
}

// BuildTree fetches the tab's full accessibility tree, filters it to
// actionable and structural nodes, assigns sequential ref ids in tree
// order, and replaces the tab's AX cache with the new (ref_id ->
// backend_node_id) mapping.
func (e *Engine) BuildTree(ctx context.Context, ts *session.TabState) ([]*RefNode, error) {
	raw, err := e.tr.Send(ctx, "Accessibility.getFullAXTree", accessibility.GetFullAXTree(), ts.SessionID)
	if err != nil {
		return nil, err
	}
	var ret accessibility.GetFullAXTreeReturns
	if err := json.Unmarshal(raw, &ret); err != nil {
		return nil, browsionerr.New(browsionerr.KindCDPError, "get_ax_tree: malformed result: %v", err)
	}

	byID := make(map[accessibility.NodeID]*accessibility.Node, len(ret.Nodes))
	var root *accessibility.Node
	for _, n := range ret.Nodes {
		byID[n.NodeID] = n
		if root == nil && len(n.ParentID) == 0 {
			root = n
		}
	}
	if root == nil && len(ret.Nodes) > 0 {
		root = ret.Nodes[0]
	}

	cache := make(map[string]session.AXCacheEntry)
	counter := 0
	var walk func(n *accessibility.Node) []*RefNode
	walk = func(n *accessibility.Node) []*RefNode {
		if n == nil {
			return nil
		}
		var out []*RefNode
		keep, role, name, value := classify(n)
		var refID string
		if keep {
			counter++
			refID = "e" + strconv.Itoa(counter)
		}
		var childResults []*RefNode
		for _, childID := range n.ChildIDs {
			if child, ok := byID[childID]; ok {
				childResults = append(childResults, walk(child)...)
			}
		}
		if keep {
			if n.BackendDOMNodeID != 0 {
				cache[refID] = session.AXCacheEntry{BackendNodeID: int64(n.BackendDOMNodeID)}
			}
			out = append(out, &RefNode{RefID: refID, Role: role, Name: name, Value: value, Children: childResults})
		} else {
			out = append(out, childResults...)
		}
		return out
	}

	var tree []*RefNode
	if root != nil {
		tree = walk(root)
	}
	ts.ReplaceAXCache(cache)
	return tree, nil
}

// axValueString decodes an AXValue's JSON-encoded payload into a plain
// string; AX values are usually bare JSON strings but fall back to the raw
// encoding for numeric or object-valued attributes.
func axValueString(v *accessibility.AXValue) string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	return string(v.Value)
}

func classify(n *accessibility.Node) (keep bool, role, name, value string) {
	if n.Ignored {
		return false, "", "", ""
	}
	role = axValueString(n.Role)
	name = axValueString(n.Name)
	value = axValueString(n.Value)
	if discardedRoles[role] {
		return false, role, name, value
	}
	if role == "StaticText" && name == "" {
		return false, role, name, value
	}
	if interactiveRoles[role] {
		return true, role, name, value
	}
	if structuralRoles[role] && name != "" {
		return true, role, name, value
	}
	return false, role, name, value
}

// Resolve looks up a ref id's backend node and returns the viewport
// coordinates of its bounding box center, using DOM.resolveNode +
// Runtime.callFunctionOn rather than the deprecated
// DOM.pushNodesByBackendIdsToFrontend path.
func (e *Engine) Resolve(ctx context.Context, ts *session.TabState, refID string) (x, y float64, err error) {
	entry, ok := ts.ResolveAXRef(refID)
	if !ok {
		return 0, 0, browsionerr.New(browsionerr.KindSelectorNotFound, "unknown ref %q (AX tree may need refreshing)", refID)
	}

	resolveParams := dom.ResolveNode().WithBackendNodeID(dom.BackendNodeID(entry.BackendNodeID))
	raw, err := e.tr.Send(ctx, "DOM.resolveNode", resolveParams, ts.SessionID)
	if err != nil {
		return 0, 0, err
	}
	var resolveRet dom.ResolveNodeReturns
	if err := json.Unmarshal(raw, &resolveRet); err != nil {
		return 0, 0, browsionerr.New(browsionerr.KindCDPError, "resolve_node: malformed result: %v", err)
	}
	if resolveRet.Object == nil {
		return 0, 0, browsionerr.New(browsionerr.KindSelectorNotFound, "ref %q has no live object", refID)
	}

	callParams := runtime.CallFunctionOn("function(){var r=this.getBoundingClientRect();return {x:r.x+r.width/2,y:r.y+r.height/2};}").
		WithObjectID(resolveRet.Object.ObjectID).
		WithReturnByValue(true)
	raw, err = e.tr.Send(ctx, "Runtime.callFunctionOn", callParams, ts.SessionID)
	if err != nil {
		return 0, 0, err
	}
	var callRet runtime.CallFunctionOnReturns
	if err := json.Unmarshal(raw, &callRet); err != nil {
		return 0, 0, browsionerr.New(browsionerr.KindCDPError, "call_function_on: malformed result: %v", err)
	}
	if callRet.ExceptionDetails != nil {
		return 0, 0, browsionerr.New(browsionerr.KindCDPError, "getBoundingClientRect: %s", callRet.ExceptionDetails.Text)
	}
	var point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(callRet.Result.Value, &point); err != nil {
		return 0, 0, browsionerr.New(browsionerr.KindCDPError, "malformed bounding rect: %v", err)
	}
	return point.X, point.Y, nil
}

// Focus focuses a ref's backend node directly via DOM.focus, without
// coordinate resolution, as used by type_ref/focus_ref.
func (e *Engine) Focus(ctx context.Context, ts *session.TabState, refID string) error {
	entry, ok := ts.ResolveAXRef(refID)
	if !ok {
		return browsionerr.New(browsionerr.KindSelectorNotFound, "unknown ref %q (AX tree may need refreshing)", refID)
	}
	params := dom.Focus().WithBackendNodeID(dom.BackendNodeID(entry.BackendNodeID))
	_, err := e.tr.Send(ctx, "DOM.focus", params, ts.SessionID)
	return err
}
