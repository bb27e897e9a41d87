package ops

import (
	"testing"

	"github.com/browsion/browsion-core/internal/cdp/session"
)

func TestResolveFallsBackToActiveTab(t *testing.T) {
	reg := session.NewRegistry()
	reg.GetOrCreate("target-1", "sess-1")
	o := New(nil, reg, nil, 0, 10, nil)

	ts, err := o.resolve("")
	if err != nil {
		t.Fatalf("resolve(\"\"): %v", err)
	}
	if ts.TargetID != "target-1" {
		t.Errorf("expected active tab target-1, got %s", ts.TargetID)
	}
}

func TestResolveUnknownTargetErrors(t *testing.T) {
	reg := session.NewRegistry()
	o := New(nil, reg, nil, 0, 10, nil)

	if _, err := o.resolve("missing"); err == nil {
		t.Error("expected error resolving unknown target")
	}
}

func TestResolveNoActiveTabErrors(t *testing.T) {
	reg := session.NewRegistry()
	o := New(nil, reg, nil, 0, 10, nil)

	if _, err := o.resolve(""); err == nil {
		t.Error("expected error when there is no active tab")
	}
}

func TestListTabsReflectsActive(t *testing.T) {
	reg := session.NewRegistry()
	reg.GetOrCreate("target-1", "sess-1")
	reg.GetOrCreate("target-2", "sess-2")
	reg.SetActive("target-2")
	o := New(nil, reg, nil, 0, 10, nil)

	tabs := o.ListTabs()
	if len(tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(tabs))
	}
	var sawActive bool
	for _, tab := range tabs {
		if tab.TargetID == "target-2" {
			sawActive = tab.Active
		}
	}
	if !sawActive {
		t.Error("expected target-2 to be marked active")
	}
}

func TestSwitchTabRejectsUnknown(t *testing.T) {
	reg := session.NewRegistry()
	o := New(nil, reg, nil, 0, 10, nil)

	if err := o.SwitchTab("ghost"); err == nil {
		t.Error("expected error switching to unknown tab")
	}
}

func TestConsoleLogRingBufferEvictsOldest(t *testing.T) {
	reg := session.NewRegistry()
	reg.GetOrCreate("target-1", "sess-1")
	o := New(nil, reg, nil, 0, 2, nil)

	o.RecordConsoleEntry("target-1", ConsoleEntry{Text: "one"})
	o.RecordConsoleEntry("target-1", ConsoleEntry{Text: "two"})
	o.RecordConsoleEntry("target-1", ConsoleEntry{Text: "three"})

	entries, err := o.GetConsoleLogs("target-1")
	if err != nil {
		t.Fatalf("GetConsoleLogs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected capacity-bound 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "two" || entries[1].Text != "three" {
		t.Errorf("expected oldest entry evicted, got %+v", entries)
	}
}
