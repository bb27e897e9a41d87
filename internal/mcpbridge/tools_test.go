package mcpbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected exactly one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	return tc.Text
}

func TestAllToolsHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range allTools() {
		if seen[spec.name] {
			t.Errorf("duplicate tool name %q", spec.name)
		}
		seen[spec.name] = true
	}
	if len(seen) < 70 {
		t.Errorf("expected at least 70 tools, got %d", len(seen))
	}
}

func TestBuildToolSetsRequiredFlagOnPathParam(t *testing.T) {
	spec := toolSpec{name: "get_url", path: "/api/browser/{id}/url", pathParams: []pathParam{idPath("profile_id")}}
	tool := buildTool(spec)
	schema, ok := tool.InputSchema.Properties["profile_id"]
	if !ok {
		t.Fatal("expected profile_id in schema properties")
	}
	_ = schema
	found := false
	for _, r := range tool.InputSchema.Required {
		if r == "profile_id" {
			found = true
		}
	}
	if !found {
		t.Error("expected profile_id to be required")
	}
}

func TestInvokeMissingRequiredArgument(t *testing.T) {
	spec := toolSpec{
		name:       "click",
		path:       "/api/browser/{id}/click",
		pathParams: []pathParam{idPath("profile_id")},
		params:     []param{reqS("selector", "selector")},
	}
	res, err := invoke(context.Background(), New("http://unused", ""), spec, map[string]any{"profile_id": "p1"})
	if err != nil {
		t.Fatalf("invoke returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error for missing selector")
	}
}

func TestInvokeBuildsPathQueryAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/browser/p1/scroll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["dx"] != float64(10) || body["dy"] != float64(0) {
			t.Errorf("unexpected body %v", body)
		}
		json.NewEncoder(w).Encode(envelope{Success: true, Data: json.RawMessage(`{}`)})
	}))
	defer srv.Close()

	spec := toolSpec{
		name:       "scroll",
		method:     http.MethodPost,
		path:       "/api/browser/{id}/scroll",
		pathParams: []pathParam{idPath("profile_id")},
		params:     []param{reqN("dx", "dx"), reqN("dy", "dy")},
	}
	res, err := invoke(context.Background(), New(srv.URL, ""), spec, map[string]any{"profile_id": "p1", "dx": float64(10), "dy": float64(0)})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
}

func TestInvokeRawBodyArgMustBeValidJSON(t *testing.T) {
	spec := toolSpec{
		name:       "create_profile",
		method:     http.MethodPost,
		path:       "/api/profiles",
		rawBodyArg: "profile_json",
	}
	res, err := invoke(context.Background(), New("http://unused", ""), spec, map[string]any{"profile_json": "{not json"})
	if err != nil {
		t.Fatalf("invoke returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error for malformed JSON")
	}
}

func TestInvokeStringListParamSplitsCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		paths, ok := body["paths"].([]any)
		if !ok || len(paths) != 2 || paths[0] != "a.txt" || paths[1] != "b.txt" {
			t.Errorf("unexpected paths %v", body["paths"])
		}
		json.NewEncoder(w).Encode(envelope{Success: true})
	}))
	defer srv.Close()

	spec := toolSpec{
		name:       "upload_file",
		method:     http.MethodPost,
		path:       "/api/browser/{id}/upload",
		pathParams: []pathParam{idPath("profile_id")},
		params:     []param{reqS("selector", "selector"), reqList("paths", "paths")},
	}
	res, err := invoke(context.Background(), New(srv.URL, ""), spec, map[string]any{
		"profile_id": "p1", "selector": "#f", "paths": "a.txt, b.txt",
	})
	if err != nil || res.IsError {
		t.Fatalf("invoke failed: err=%v res=%v", err, res)
	}
}
