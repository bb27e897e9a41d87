package lifecycle

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/profile"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	store, err := profile.Load(filepath.Join(dir, "profiles.toml"))
	if err != nil {
		t.Fatalf("profile.Load: %v", err)
	}
	return New(store, 9222, 9224, 5*time.Second, 3*time.Second, 1000, filepath.Join(dir, "sessions.json"), nil)
}

func TestLaunchOrAttachUnknownProfileErrors(t *testing.T) {
	m := newTestManager(t)
	_, err := m.LaunchOrAttach(context.Background(), "missing")
	if browsionerr.KindOf(err) != browsionerr.KindProfileNotFound {
		t.Errorf("expected KindProfileNotFound, got %v", err)
	}
}

func TestKillNotRunningErrors(t *testing.T) {
	m := newTestManager(t)
	err := m.Kill("missing")
	if browsionerr.KindOf(err) != browsionerr.KindProfileNotRunning {
		t.Errorf("expected KindProfileNotRunning, got %v", err)
	}
}

func TestClientForNotRunningErrors(t *testing.T) {
	m := newTestManager(t)
	_, err := m.ClientFor(context.Background(), "missing")
	if browsionerr.KindOf(err) != browsionerr.KindProfileNotRunning {
		t.Errorf("expected KindProfileNotRunning, got %v", err)
	}
}

func TestAllocatePortWrapsAndAvoidsInUse(t *testing.T) {
	m := newTestManager(t) // range [9222, 9224]
	m.processes["a"] = LaunchedProcess{ProfileID: "a", CDPPort: 9222}
	m.processes["b"] = LaunchedProcess{ProfileID: "b", CDPPort: 9223}

	port := m.allocatePort()
	if port != 9224 {
		t.Errorf("expected the one free port 9224, got %d", port)
	}
}

func TestRegisterExternalUnreachablePortErrors(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.profiles.Create(profile.Profile{ID: "p1", Name: "Test"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := m.RegisterExternal(ctx, "p1", 1234, 1) // port 1 should refuse the connection
	if err == nil {
		t.Error("expected error registering an unreachable port")
	}
}

func TestRunningReflectsProcesses(t *testing.T) {
	m := newTestManager(t)
	m.processes["a"] = LaunchedProcess{ProfileID: "a", CDPPort: 9222}

	running := m.Running()
	if len(running) != 1 || running[0].ProfileID != "a" {
		t.Errorf("expected one running process for profile a, got %+v", running)
	}
}
