package intercept

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeTransport struct {
	calls []string
}

func (f *fakeTransport) Send(ctx context.Context, method string, params any, sessionID string) (json.RawMessage, error) {
	f.calls = append(f.calls, method)
	return json.RawMessage(`{}`), nil
}

func TestBlockEnablesFetchOnceAndRegistersRule(t *testing.T) {
	ft := &fakeTransport{}
	m := New(ft)
	ctx := context.Background()

	if err := m.Block(ctx, "sess", "*/ads/*"); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if err := m.Mock(ctx, "sess", "*/api/*", 200, "{}", "application/json"); err != nil {
		t.Fatalf("Mock: %v", err)
	}

	rules := m.Rules("sess")
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Pattern != "*/ads/*" || rules[0].Action != ActionBlock {
		t.Errorf("expected first rule to be the block rule, got %+v", rules[0])
	}
	if rules[1].Pattern != "*/api/*" || rules[1].Action != ActionMock {
		t.Errorf("expected second rule to be the mock rule, got %+v", rules[1])
	}

	enableCount := 0
	for _, c := range ft.calls {
		if c == "Fetch.enable" {
			enableCount++
		}
	}
	if enableCount != 1 {
		t.Errorf("expected Fetch.enable exactly once across both registrations, got %d", enableCount)
	}
}

func TestClearDisablesFetchAndDropsRules(t *testing.T) {
	ft := &fakeTransport{}
	m := New(ft)
	ctx := context.Background()

	_ = m.Block(ctx, "sess", "*")
	if err := m.Clear(ctx, "sess"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if rules := m.Rules("sess"); len(rules) != 0 {
		t.Errorf("expected rules cleared, got %+v", rules)
	}
	if ft.calls[len(ft.calls)-1] != "Fetch.disable" {
		t.Errorf("expected Fetch.disable call, got %v", ft.calls)
	}
}

func TestClearOnNeverEnabledSessionIsNoop(t *testing.T) {
	ft := &fakeTransport{}
	m := New(ft)

	if err := m.Clear(context.Background(), "never-enabled"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(ft.calls) != 0 {
		t.Errorf("expected no Fetch calls for a session that was never enabled, got %v", ft.calls)
	}
}
