package mcpbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWaitReadySucceedsOnceHealthy(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(envelope{Success: true})
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if hits < 3 {
		t.Errorf("expected at least 3 health probes, got %d", hits)
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := b.WaitReady(ctx); err == nil {
		t.Error("expected WaitReady to time out")
	}
}

func TestDoSendsAPIKeyAndUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("expected X-API-Key secret, got %q", got)
		}
		json.NewEncoder(w).Encode(envelope{Success: true, Data: json.RawMessage(`{"url":"https://example.com"}`)})
	}))
	defer srv.Close()

	b := New(srv.URL, "secret")
	data, err := b.do(context.Background(), http.MethodGet, "/api/browser/p1/url", nil, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(data) != `{"url":"https://example.com"}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestDoReturnsEnvelopeErrorAsGoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope{Success: false, Error: "profile not found"})
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	_, err := b.do(context.Background(), http.MethodGet, "/api/profiles/missing", nil, nil)
	if err == nil || err.Error() != "profile not found" {
		t.Errorf("expected profile not found error, got %v", err)
	}
}

func TestDoEncodesQueryAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("expected limit=5 query param, got %q", r.URL.Query().Get("limit"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["selector"] != "#go" {
			t.Errorf("expected selector #go in body, got %v", body)
		}
		json.NewEncoder(w).Encode(envelope{Success: true})
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	_, err := b.do(context.Background(), http.MethodPost, "/api/browser/p1/click", map[string]string{"limit": "5"}, map[string]any{"selector": "#go"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
}
