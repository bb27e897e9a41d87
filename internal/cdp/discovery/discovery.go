// Package discovery talks to a running browser's CDP HTTP endpoint to find
// its WebSocket debugger URL and enumerate existing page targets, before a
// transport.Transport is ever dialed.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// VersionInfo is the shape of GET /json/version.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// TargetInfo is one entry of GET /json/list.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	Title                string `json:"title"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Probe fetches /json/version from the given CDP port, used both to wait
// for a freshly spawned browser to become ready and to validate a
// register-external call's claimed port.
func Probe(ctx context.Context, port int) (*VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/json/version", port), nil)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindInvalidArgument, "build probe request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindDisconnected, "probe port %d: %v", port, err)
	}
	defer resp.Body.Close()

	var v VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, browsionerr.New(browsionerr.KindDisconnected, "decode /json/version: %v", err)
	}
	return &v, nil
}

// ProbeWithRetry polls Probe every 100ms until it succeeds or timeout
// elapses, covering the window between process spawn and the CDP server
// accepting connections.
func ProbeWithRetry(ctx context.Context, port int, timeout time.Duration) (*VersionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	const retryInterval = 100 * time.Millisecond
	var lastErr error
	for {
		v, err := Probe(ctx, port)
		if err == nil {
			return v, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, browsionerr.New(browsionerr.KindLaunchFailed, "browser never became ready on port %d: %v", port, lastErr)
		case <-time.After(retryInterval):
		}
	}
}

// ListTargets fetches GET /json/list, the page targets already open when
// we attach (used both at launch and at register-external time).
func ListTargets(ctx context.Context, port int) ([]TargetInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://127.0.0.1:%d/json/list", port), nil)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindInvalidArgument, "build list request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindDisconnected, "list targets on port %d: %v", port, err)
	}
	defer resp.Body.Close()

	var targets []TargetInfo
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, browsionerr.New(browsionerr.KindDisconnected, "decode /json/list: %v", err)
	}
	return targets, nil
}
