package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type paramKind int

const (
	kindString paramKind = iota
	kindNumber
	kindBoolean
	kindStringList // comma-separated list, sent as a JSON array of strings
)

type paramLoc int

const (
	locBody paramLoc = iota
	locQuery
)

// param describes one MCP tool argument and where it lands in the HTTP
// request built for browsiond.
type param struct {
	name     string
	kind     paramKind
	loc      paramLoc
	required bool
	desc     string
}

// pathParam binds an MCP argument to a placeholder in a toolSpec's path
// template, e.g. {arg: "profile_id", placeholder: "{id}"}.
type pathParam struct {
	arg         string
	placeholder string
}

// toolSpec is a table-driven description of one MCP tool: enough to build
// both its JSON-schema and its HTTP forwarding without per-tool handler
// code. rawBodyArg, when set, names a single string argument holding a
// JSON document forwarded verbatim as the request body, for the handful of
// routes (profile records, cookie imports) whose body is a nested object
// that a flat argument list can't express cleanly.
type toolSpec struct {
	name       string
	desc       string
	method     string
	path       string
	pathParams []pathParam
	params     []param
	rawBodyArg string
	rawBodyDoc string
}

func idPath(arg string) pathParam { return pathParam{arg: arg, placeholder: "{id}"} }

func reqS(name, desc string) param { return param{name: name, kind: kindString, loc: locBody, required: true, desc: desc} }
func optS(name, desc string) param { return param{name: name, kind: kindString, loc: locBody, desc: desc} }
func reqN(name, desc string) param { return param{name: name, kind: kindNumber, loc: locBody, required: true, desc: desc} }
func optN(name, desc string) param { return param{name: name, kind: kindNumber, loc: locBody, desc: desc} }
func optB(name, desc string) param { return param{name: name, kind: kindBoolean, loc: locBody, desc: desc} }
func reqB(name, desc string) param { return param{name: name, kind: kindBoolean, loc: locBody, required: true, desc: desc} }
func reqList(name, desc string) param {
	return param{name: name, kind: kindStringList, loc: locBody, required: true, desc: desc}
}
func qS(name, desc string) param { return param{name: name, kind: kindString, loc: locQuery, desc: desc} }
func qN(name, desc string) param { return param{name: name, kind: kindNumber, loc: locQuery, desc: desc} }

const browserIDDesc = "id of the profile whose browser tab this command targets"

// browserTools returns the specs for every /api/browser/:id/* route. Each
// one implicitly takes a required "profile_id" argument bound to {id}.
func browserTools() []toolSpec {
	pp := []pathParam{idPath("profile_id")}
	return []toolSpec{
		{name: "navigate", desc: "Navigate the tab to a URL", method: "POST", path: "/api/browser/{id}/navigate", pathParams: pp,
			params: []param{reqS("url", "destination URL"), optS("wait_until", "load|domcontentloaded|networkidle"), optN("timeout_ms", "timeout in milliseconds")}},
		{name: "navigate_wait", desc: "Navigate and wait for the page to finish loading", method: "POST", path: "/api/browser/{id}/navigate_wait", pathParams: pp,
			params: []param{reqS("url", "destination URL"), optS("wait_until", "load|domcontentloaded|networkidle"), optN("timeout_ms", "timeout in milliseconds")}},
		{name: "get_url", desc: "Get the tab's current URL", method: "GET", path: "/api/browser/{id}/url", pathParams: pp},
		{name: "get_title", desc: "Get the tab's current page title", method: "GET", path: "/api/browser/{id}/title", pathParams: pp},
		{name: "go_back", desc: "Navigate back in history", method: "POST", path: "/api/browser/{id}/back", pathParams: pp},
		{name: "go_forward", desc: "Navigate forward in history", method: "POST", path: "/api/browser/{id}/forward", pathParams: pp},
		{name: "reload", desc: "Reload the current page", method: "POST", path: "/api/browser/{id}/reload", pathParams: pp,
			params: []param{optB("ignore_cache", "bypass the cache when reloading")}},
		{name: "wait_for_navigation", desc: "Wait for the active tab to go network-idle", method: "POST", path: "/api/browser/{id}/wait_for_navigation", pathParams: pp,
			params: []param{optN("timeout_ms", "timeout in milliseconds")}},
		{name: "wait_for_url", desc: "Wait until the tab's URL contains a substring", method: "POST", path: "/api/browser/{id}/wait_for_url", pathParams: pp,
			params: []param{reqS("url_substring", "substring the URL must contain"), optN("timeout_ms", "timeout in milliseconds")}},

		{name: "click", desc: "Click an element", method: "POST", path: "/api/browser/{id}/click", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to click")}},
		{name: "hover", desc: "Hover the pointer over an element", method: "POST", path: "/api/browser/{id}/hover", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to hover")}},
		{name: "double_click", desc: "Double-click an element", method: "POST", path: "/api/browser/{id}/double_click", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to double-click")}},
		{name: "right_click", desc: "Right-click an element", method: "POST", path: "/api/browser/{id}/right_click", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to right-click")}},
		{name: "click_at", desc: "Click at fixed viewport coordinates", method: "POST", path: "/api/browser/{id}/click_at", pathParams: pp,
			params: []param{reqN("x", "viewport x coordinate"), reqN("y", "viewport y coordinate")}},
		{name: "drag", desc: "Drag from one element to another", method: "POST", path: "/api/browser/{id}/drag", pathParams: pp,
			params: []param{reqS("from_selector", "CSS selector of the drag source"), reqS("to_selector", "CSS selector of the drop target")}},

		{name: "type_text", desc: "Type text into the focused element", method: "POST", path: "/api/browser/{id}/type", pathParams: pp,
			params: []param{reqS("text", "text to type"), optN("delay_ms", "per-keystroke delay in milliseconds")}},
		{name: "slow_type", desc: "Type text with a human-like delay between keystrokes", method: "POST", path: "/api/browser/{id}/slow_type", pathParams: pp,
			params: []param{reqS("text", "text to type"), optN("delay_ms", "per-keystroke delay in milliseconds")}},
		{name: "press_key", desc: "Press a single keyboard key", method: "POST", path: "/api/browser/{id}/press_key", pathParams: pp,
			params: []param{reqS("key", "key name, e.g. Enter, Tab, ArrowDown")}},

		{name: "select_option", desc: "Choose an option in a <select> element", method: "POST", path: "/api/browser/{id}/select", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the select element"), reqS("value", "option value to select")}},
		{name: "upload_file", desc: "Upload one or more local files to a file input", method: "POST", path: "/api/browser/{id}/upload", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the file input"), reqList("paths", "comma-separated absolute file paths")}},

		{name: "scroll", desc: "Scroll the page by an offset", method: "POST", path: "/api/browser/{id}/scroll", pathParams: pp,
			params: []param{reqN("dx", "horizontal scroll delta"), reqN("dy", "vertical scroll delta"), optS("selector", "scroll within this element instead of the page")}},
		{name: "scroll_element", desc: "Scroll a specific element by an offset", method: "POST", path: "/api/browser/{id}/scroll_element", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to scroll"), reqN("dx", "horizontal scroll delta"), reqN("dy", "vertical scroll delta")}},
		{name: "scroll_into_view", desc: "Scroll an element into the viewport", method: "POST", path: "/api/browser/{id}/scroll_into_view", pathParams: pp,
			params: []param{reqS("selector", "CSS selector of the element to reveal")}},
		{name: "wait_for", desc: "Wait for a selector to appear in the DOM", method: "POST", path: "/api/browser/{id}/wait_for", pathParams: pp,
			params: []param{optS("selector", "CSS selector to wait for"), optS("text", "text to wait for"), optN("timeout_ms", "timeout in milliseconds")}},
		{name: "wait_for_text", desc: "Wait for text to appear anywhere on the page", method: "POST", path: "/api/browser/{id}/wait_for_text", pathParams: pp,
			params: []param{reqS("text", "text to wait for"), optN("timeout_ms", "timeout in milliseconds")}},
		{name: "wait", desc: "Pause for a fixed duration", method: "POST", path: "/api/browser/{id}/wait", pathParams: pp,
			params: []param{optN("timeout_ms", "pause duration in milliseconds")}},

		{name: "screenshot", desc: "Capture a PNG screenshot of the visible viewport; content outside the viewport is not captured", method: "GET", path: "/api/browser/{id}/screenshot", pathParams: pp},
		{name: "screenshot_element", desc: "Capture a screenshot of a single element", method: "GET", path: "/api/browser/{id}/screenshot_element", pathParams: pp,
			params: []param{qS("selector", "CSS selector of the element to capture")}},
		{name: "page_state", desc: "Get a structured summary of the current page", method: "GET", path: "/api/browser/{id}/page_state", pathParams: pp},
		{name: "ax_tree", desc: "Get the accessibility tree with stable element refs", method: "GET", path: "/api/browser/{id}/ax_tree", pathParams: pp},
		{name: "dom_context", desc: "Alias of ax_tree for prompts that expect this name", method: "GET", path: "/api/browser/{id}/dom_context", pathParams: pp},
		{name: "extract", desc: "Evaluate a JS expression and return its JSON-decoded result", method: "POST", path: "/api/browser/{id}/extract", pathParams: pp,
			params: []param{reqS("expression", "JavaScript expression to evaluate")}},
		{name: "page_text", desc: "Get the page's visible text content", method: "GET", path: "/api/browser/{id}/page_text", pathParams: pp},

		{name: "click_ref", desc: "Click an element by its ax_tree ref id", method: "POST", path: "/api/browser/{id}/click_ref", pathParams: pp,
			params: []param{reqS("ref_id", "ref id from a prior ax_tree/dom_context call")}},
		{name: "type_ref", desc: "Type text into an element by its ax_tree ref id", method: "POST", path: "/api/browser/{id}/type_ref", pathParams: pp,
			params: []param{reqS("ref_id", "ref id from a prior ax_tree/dom_context call"), optS("text", "text to type")}},
		{name: "focus_ref", desc: "Focus an element by its ax_tree ref id", method: "POST", path: "/api/browser/{id}/focus_ref", pathParams: pp,
			params: []param{reqS("ref_id", "ref id from a prior ax_tree/dom_context call")}},

		{name: "evaluate", desc: "Evaluate an arbitrary JS expression in the page", method: "POST", path: "/api/browser/{id}/evaluate", pathParams: pp,
			params: []param{reqS("expression", "JavaScript expression to evaluate")}},

		{name: "list_tabs", desc: "List every tab open in this browser", method: "GET", path: "/api/browser/{id}/tabs", pathParams: pp},
		{name: "new_tab", desc: "Open a new tab", method: "POST", path: "/api/browser/{id}/tabs/new", pathParams: pp,
			params: []param{optS("url", "URL to open in the new tab")}},
		{name: "switch_tab", desc: "Make a tab the active one", method: "POST", path: "/api/browser/{id}/tabs/switch", pathParams: pp,
			params: []param{reqS("target_id", "target id of the tab to activate")}},
		{name: "close_tab", desc: "Close a tab", method: "POST", path: "/api/browser/{id}/tabs/close", pathParams: pp,
			params: []param{reqS("target_id", "target id of the tab to close")}},
		{name: "wait_for_new_tab", desc: "Wait for a new tab to open and return its target id", method: "POST", path: "/api/browser/{id}/wait_for_new_tab", pathParams: pp,
			params: []param{optN("timeout_ms", "timeout in milliseconds")}},

		{name: "get_cookies", desc: "List cookies visible to the current page", method: "GET", path: "/api/browser/{id}/cookies", pathParams: pp},
		{name: "set_cookie", desc: "Set one cookie", method: "POST", path: "/api/browser/{id}/cookies/set", pathParams: pp,
			params: []param{reqS("name", "cookie name"), reqS("value", "cookie value"), reqS("domain", "cookie domain"), optS("path", "cookie path"), optB("secure", "secure flag"), optB("http_only", "HttpOnly flag"), optS("same_site", "Strict|Lax|None")}},
		{name: "clear_cookies", desc: "Clear every cookie in the browser, not only the current page's", method: "POST", path: "/api/browser/{id}/cookies/clear", pathParams: pp},
		{name: "export_cookies", desc: "Export cookies as JSON or Netscape format", method: "GET", path: "/api/browser/{id}/cookies/export", pathParams: pp,
			params: []param{qS("format", "json (default) or netscape")}},
		{name: "import_cookies", desc: "Import cookies from a JSON or Netscape document", method: "POST", path: "/api/browser/{id}/cookies/import", pathParams: pp,
			rawBodyArg: "cookies_json", rawBodyDoc: `JSON object: {"format":"json"|"netscape","cookies":[{"name":...,"value":...,"domain":...}],"document":"<netscape cookie file text>"}`},

		{name: "enable_console_capture", desc: "Start capturing console.log output on this tab", method: "POST", path: "/api/browser/{id}/console/enable", pathParams: pp},
		{name: "get_console_logs", desc: "Get captured console log entries", method: "GET", path: "/api/browser/{id}/console", pathParams: pp},
		{name: "clear_console_logs", desc: "Clear captured console log entries", method: "POST", path: "/api/browser/{id}/console/clear", pathParams: pp},
		{name: "get_network_log", desc: "Get captured network request/response entries", method: "GET", path: "/api/browser/{id}/network_log", pathParams: pp},
		{name: "clear_network_log", desc: "Clear captured network log entries", method: "POST", path: "/api/browser/{id}/network_log/clear", pathParams: pp},

		{name: "intercept_block", desc: "Block requests matching a URL pattern", method: "POST", path: "/api/browser/{id}/intercept/block", pathParams: pp,
			params: []param{reqS("pattern", "URL match pattern, e.g. *analytics*")}},
		{name: "intercept_mock", desc: "Mock responses for requests matching a URL pattern", method: "POST", path: "/api/browser/{id}/intercept/mock", pathParams: pp,
			params: []param{reqS("pattern", "URL match pattern"), optN("status", "HTTP status to return (default 200)"), optS("body", "response body to return"), optS("content_type", "response Content-Type")}},
		{name: "intercept_clear", desc: "Clear all network interception rules", method: "POST", path: "/api/browser/{id}/intercept/clear", pathParams: pp},
		{name: "get_intercept_rules", desc: "List active network interception rules", method: "GET", path: "/api/browser/{id}/intercept", pathParams: pp},

		{name: "handle_dialog", desc: "Accept or dismiss the JS dialog (alert/confirm/prompt) that is currently open", method: "POST", path: "/api/browser/{id}/dialog", pathParams: pp,
			params: []param{reqB("accept", "true to accept/confirm, false to dismiss/cancel"), optS("prompt_text", "text to enter if it's a prompt() dialog")}},

		{name: "emulate", desc: "Apply viewport and user-agent emulation", method: "POST", path: "/api/browser/{id}/emulate", pathParams: pp,
			params: []param{reqN("width", "viewport width in pixels"), reqN("height", "viewport height in pixels"), optN("device_scale_factor", "device pixel ratio"), optB("mobile", "emulate a mobile viewport"), optS("user_agent", "override User-Agent string")}},
		{name: "clear_emulation", desc: "Remove viewport and user-agent emulation", method: "DELETE", path: "/api/browser/{id}/emulate", pathParams: pp},

		{name: "get_storage", desc: "Read local or session storage as a JSON object", method: "GET", path: "/api/browser/{id}/storage/{type}", pathParams: append(append([]pathParam{}, pp...), pathParam{arg: "storage_type", placeholder: "{type}"}),
			params: []param{}},
		{name: "set_storage", desc: "Merge keys into local or session storage", method: "POST", path: "/api/browser/{id}/storage/{type}", pathParams: append(append([]pathParam{}, pp...), pathParam{arg: "storage_type", placeholder: "{type}"}),
			params: []param{reqS("data", "JSON object whose keys are merged into storage")}},
		{name: "clear_storage", desc: "Clear local or session storage", method: "DELETE", path: "/api/browser/{id}/storage/{type}", pathParams: append(append([]pathParam{}, pp...), pathParam{arg: "storage_type", placeholder: "{type}"}),
			params: []param{}},

		{name: "tap", desc: "Tap an element (touch emulation)", method: "POST", path: "/api/browser/{id}/tap", pathParams: pp,
			params: []param{optS("selector", "CSS selector of the element to tap")}},
		{name: "swipe", desc: "Swipe from one point to another (touch emulation)", method: "POST", path: "/api/browser/{id}/swipe", pathParams: pp,
			params: []param{reqN("x1", "start x"), reqN("y1", "start y"), reqN("x2", "end x"), reqN("y2", "end y")}},

		{name: "get_pdf", desc: "Render the page to a PDF (base64-encoded)", method: "GET", path: "/api/browser/{id}/pdf", pathParams: pp},

		{name: "get_frames", desc: "List iframes on the page", method: "GET", path: "/api/browser/{id}/frames", pathParams: pp},
		{name: "switch_frame", desc: "Target a specific iframe for evaluate/extract", method: "POST", path: "/api/browser/{id}/frames/switch", pathParams: pp,
			params: []param{reqS("frame_id", "frame id from get_frames")}},
		{name: "reset_to_main_frame", desc: "Stop targeting a sub-frame; address the main frame again", method: "POST", path: "/api/browser/{id}/frames/main", pathParams: pp},
	}
}

// managementTools returns the specs for every route outside /api/browser/:id.
func managementTools() []toolSpec {
	return []toolSpec{
		{name: "list_profiles", desc: "List every configured browser profile", method: "GET", path: "/api/profiles"},
		{name: "create_profile", desc: "Create a new browser profile", method: "POST", path: "/api/profiles",
			rawBodyArg: "profile_json", rawBodyDoc: `JSON object: {"id":"...","name":"...","user_data_dir":"...","proxy":"...","language":"...","timezone":"...","fingerprint":"...","color":"...","tags":["..."],"headless":false,"extra_args":["..."],"description":"..."}`},
		{name: "get_profile", desc: "Get one profile's configuration", method: "GET", path: "/api/profiles/{id}", pathParams: []pathParam{idPath("profile_id")}},
		{name: "update_profile", desc: "Replace a profile's configuration", method: "PUT", path: "/api/profiles/{id}", pathParams: []pathParam{idPath("profile_id")},
			rawBodyArg: "profile_json", rawBodyDoc: `JSON object with the same shape as create_profile`},
		{name: "delete_profile", desc: "Delete a profile", method: "DELETE", path: "/api/profiles/{id}", pathParams: []pathParam{idPath("profile_id")}},

		{name: "launch_browser", desc: "Launch (or attach to) a profile's browser process", method: "POST", path: "/api/launch/{id}", pathParams: []pathParam{idPath("profile_id")}},
		{name: "kill_browser", desc: "Terminate a profile's running browser process", method: "POST", path: "/api/kill/{id}", pathParams: []pathParam{idPath("profile_id")}},
		{name: "register_external", desc: "Register a browser a human already started as this profile's running instance", method: "POST", path: "/api/register-external",
			params: []param{reqS("profile_id", "profile id to associate with the running browser"), optN("pid", "OS process id, if known"), reqN("cdp_port", "the browser's remote-debugging port")}},
		{name: "list_running", desc: "List every profile with a live browser process", method: "GET", path: "/api/running"},

		{name: "get_action_log", desc: "Get recent recorded actions", method: "GET", path: "/api/action_log",
			params: []param{qS("profile_id", "restrict to one profile"), qN("limit", "maximum entries to return (default 100)")}},
		{name: "clear_action_log", desc: "Clear recorded actions", method: "DELETE", path: "/api/action_log",
			params: []param{qS("profile_id", "restrict to one profile")}},
	}
}

func allTools() []toolSpec {
	return append(managementTools(), browserTools()...)
}

// Register builds every toolSpec into an MCP tool and wires its handler to
// forward through b.
func Register(s *server.MCPServer, b *Bridge) {
	for _, spec := range allTools() {
		spec := spec
		s.AddTool(buildTool(spec), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return invoke(ctx, b, spec, request.GetArguments())
		})
	}
}

func buildTool(spec toolSpec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.desc)}

	for _, pp := range spec.pathParams {
		desc := browserIDDesc
		if pp.arg == "storage_type" {
			desc = "storage kind: local or session"
		}
		opts = append(opts, mcp.WithString(pp.arg, mcp.Required(), mcp.Description(desc)))
	}
	if spec.rawBodyArg != "" {
		opts = append(opts, mcp.WithString(spec.rawBodyArg, mcp.Required(), mcp.Description(spec.rawBodyDoc)))
	}
	for _, p := range spec.params {
		var popts []mcp.PropertyOption
		if p.desc != "" {
			popts = append(popts, mcp.Description(p.desc))
		}
		if p.required {
			popts = append(popts, mcp.Required())
		}
		switch p.kind {
		case kindNumber:
			opts = append(opts, mcp.WithNumber(p.name, popts...))
		case kindBoolean:
			opts = append(opts, mcp.WithBoolean(p.name, popts...))
		default: // kindString, kindStringList
			opts = append(opts, mcp.WithString(p.name, popts...))
		}
	}
	return mcp.NewTool(spec.name, opts...)
}

func invoke(ctx context.Context, b *Bridge, spec toolSpec, args map[string]any) (*mcp.CallToolResult, error) {
	path := spec.path
	for _, pp := range spec.pathParams {
		v, ok := args[pp.arg].(string)
		if !ok || v == "" {
			return mcp.NewToolResultError(fmt.Sprintf("missing required argument %q", pp.arg)), nil
		}
		path = strings.ReplaceAll(path, pp.placeholder, v)
	}

	query := map[string]string{}
	bodyObj := map[string]any{}
	for _, p := range spec.params {
		v, present := args[p.name]
		if !present || v == nil || v == "" {
			if p.required {
				return mcp.NewToolResultError(fmt.Sprintf("missing required argument %q", p.name)), nil
			}
			continue
		}
		switch p.loc {
		case locQuery:
			query[p.name] = fmt.Sprint(v)
		case locBody:
			if p.kind == kindStringList {
				s, _ := v.(string)
				bodyObj[p.name] = splitCSV(s)
			} else {
				bodyObj[p.name] = v
			}
		}
	}

	var body any
	if spec.rawBodyArg != "" {
		raw, _ := args[spec.rawBodyArg].(string)
		if raw == "" {
			return mcp.NewToolResultError(fmt.Sprintf("missing required argument %q", spec.rawBodyArg)), nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s is not valid JSON: %v", spec.rawBodyArg, err)), nil
		}
		body = decoded
	} else if len(bodyObj) > 0 {
		body = bodyObj
	}

	data, err := b.do(ctx, spec.method, path, query, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) == 0 {
		return mcp.NewToolResultText("{}"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
