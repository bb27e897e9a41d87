// Package mcpbridge exposes the running browsiond HTTP API as a set of MCP
// tools over stdio, so an agent speaking only MCP can drive browser
// automation without knowing the REST surface underneath.
package mcpbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Bridge holds the HTTP client state used to forward every tool call to a
// running browsiond instance.
type Bridge struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New builds a Bridge targeting a browsiond instance at baseURL (no
// trailing slash), authenticating with apiKey if non-empty.
func New(baseURL, apiKey string) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// envelope mirrors httpapi's response shape so the bridge can unwrap it
// without importing the httpapi package.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// WaitReady polls GET /api/health until it answers or ctx is done, so
// cmd/browsion-mcp can fail fast with a clear message instead of letting
// every tool call time out against a service that never came up.
func (b *Bridge) WaitReady(ctx context.Context) error {
	url := b.baseURL + "/api/health"
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err == nil {
			resp, err := b.client.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("browsiond at %s never became ready: %w", b.baseURL, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do issues one HTTP request against browsiond and unwraps its envelope,
// returning the raw data payload on success or the envelope's error string
// wrapped in a Go error on failure.
func (b *Bridge) do(ctx context.Context, method, path string, query map[string]string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.apiKey != "" {
		req.Header.Set("X-API-Key", b.apiKey)
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			if v != "" {
				q.Set(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response %s %s: %w (body: %s)", method, path, err, truncate(raw, 500))
	}
	if !env.Success {
		return nil, fmt.Errorf("%s", env.Error)
	}
	return env.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
