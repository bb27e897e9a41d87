package session

import "testing"

func TestGetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()

	a := r.GetOrCreate("target-1", "sess-1")
	b := r.GetOrCreate("target-1", "sess-1")

	if a != b {
		t.Error("expected the same TabState instance on repeated GetOrCreate")
	}
	if r.ActiveTargetID() != "target-1" {
		t.Errorf("expected first tab to become active, got %q", r.ActiveTargetID())
	}
}

func TestRemoveReassignsActive(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("target-1", "sess-1")
	r.GetOrCreate("target-2", "sess-2")
	r.SetActive("target-1")

	r.Remove("target-1")

	if r.ActiveTargetID() != "target-2" {
		t.Errorf("expected active to fall back to remaining tab, got %q", r.ActiveTargetID())
	}
}

func TestStableIDSequential(t *testing.T) {
	r := NewRegistry()

	id1 := r.StableID("target-1")
	id2 := r.StableID("target-2")
	id1Again := r.StableID("target-1")

	if id1 != "tab-1" || id2 != "tab-2" {
		t.Errorf("expected tab-1/tab-2, got %s/%s", id1, id2)
	}
	if id1 != id1Again {
		t.Error("expected stable id to be memoized")
	}
}

func TestAXCacheClearedOnInvalidation(t *testing.T) {
	ts := newTabState("target-1", "sess-1")
	ts.PutAXRef("e1", 100)

	if _, ok := ts.ResolveAXRef("e1"); !ok {
		t.Fatal("expected e1 to resolve before clear")
	}

	ts.ClearAXCache()

	if _, ok := ts.ResolveAXRef("e1"); ok {
		t.Error("expected e1 to be gone after ClearAXCache")
	}
}

func TestInflightNeverNegative(t *testing.T) {
	ts := newTabState("target-1", "sess-1")
	ts.DecrementInflight()
	ts.DecrementInflight()

	if got := ts.Inflight(); got != 0 {
		t.Errorf("expected inflight to clamp at 0, got %d", got)
	}

	ts.IncrementInflight()
	ts.IncrementInflight()
	ts.DecrementInflight()

	if got := ts.Inflight(); got != 1 {
		t.Errorf("expected inflight 1, got %d", got)
	}

	ts.ResetInflight()
	if got := ts.Inflight(); got != 0 {
		t.Errorf("expected inflight reset to 0, got %d", got)
	}
}
