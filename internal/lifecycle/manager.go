// Package lifecycle implements C6: per-profile CDP-client pool,
// launch-or-attach semantics, external registration, persistence of live
// sessions, startup reconnection, and periodic dead-process sweep.
package lifecycle

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/browsion/browsion-core/internal/atomicfile"
	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/cdp/discovery"
	"github.com/browsion/browsion-core/internal/profile"
	"github.com/browsion/browsion-core/internal/redact"
)

// LaunchedProcess is the transient record for one profile's running
// browser, persisted so live browsers survive an application restart.
type LaunchedProcess struct {
	ProfileID  string    `json:"profile_id"`
	PID        int       `json:"pid"`
	CDPPort    int       `json:"cdp_port"`
	LaunchedAt time.Time `json:"launched_at"`
}

// Manager owns every LaunchedProcess and its lazily-created Client, keyed
// by profile id. The CDP port range rotates to avoid reusing a port still
// held by a not-yet-reaped process.
type Manager struct {
	profiles *profile.Store

	portLow, portHigh int
	nextPort          int

	commandTimeout  time.Duration
	launchProbeWait time.Duration
	logCapacity     int
	sessionsPath    string
	redactor        *redact.Redactor

	mu        sync.RWMutex
	processes map[string]LaunchedProcess
	clients   map[string]*Client
}

// New builds a Manager bound to a profile store and live-sessions path.
// launchProbeWait bounds how long LaunchOrAttach waits for a freshly
// spawned browser's CDP port to start answering before giving up.
// redactor scrubs captured request/response headers before they land in
// each Client's network log; nil disables scrubbing.
func New(profiles *profile.Store, portLow, portHigh int, commandTimeout, launchProbeWait time.Duration, logCapacity int, sessionsPath string, redactor *redact.Redactor) *Manager {
	if launchProbeWait <= 0 {
		launchProbeWait = 3 * time.Second
	}
	return &Manager{
		profiles:        profiles,
		portLow:         portLow,
		portHigh:        portHigh,
		nextPort:        portLow,
		commandTimeout:  commandTimeout,
		launchProbeWait: launchProbeWait,
		logCapacity:     logCapacity,
		sessionsPath:    sessionsPath,
		redactor:        redactor,
		processes:       make(map[string]LaunchedProcess),
		clients:         make(map[string]*Client),
	}
}

// Restore reads the persisted live-sessions file and re-attaches to every
// entry whose CDP port still answers; dead entries are dropped silently,
// matching the spec's "probe each; if alive, re-attach; if dead, drop."
func (m *Manager) Restore(ctx context.Context) error {
	data, err := readIfExists(m.sessionsPath)
	if err != nil {
		return browsionerr.New(browsionerr.KindIOError, "read live sessions %s: %v", m.sessionsPath, err)
	}
	if data == nil {
		return nil
	}
	var entries []LaunchedProcess
	if err := json.Unmarshal(data, &entries); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "parse live sessions %s: %v", m.sessionsPath, err)
	}

	for _, lp := range entries {
		if !processAlive(lp.PID) {
			continue
		}
		if _, err := discovery.Probe(ctx, lp.CDPPort); err != nil {
			continue
		}
		m.mu.Lock()
		m.processes[lp.ProfileID] = lp
		m.mu.Unlock()
	}
	return m.persist()
}

// LaunchOrAttach returns the running browser for profileID, launching one
// if none is alive. Idempotent: an existing live process is returned as-is.
func (m *Manager) LaunchOrAttach(ctx context.Context, profileID string) (LaunchedProcess, error) {
	m.mu.RLock()
	existing, ok := m.processes[profileID]
	m.mu.RUnlock()
	if ok && processAlive(existing.PID) {
		return existing, nil
	}

	p, ok := m.profiles.Get(profileID)
	if !ok {
		return LaunchedProcess{}, browsionerr.New(browsionerr.KindProfileNotFound, "profile %q not found", profileID)
	}

	port := m.allocatePort()
	osProc, err := spawn(p, port)
	if err != nil {
		return LaunchedProcess{}, err
	}

	if _, err := discovery.ProbeWithRetry(ctx, port, m.launchProbeWait); err != nil {
		_ = killProcess(osProc.Pid)
		return LaunchedProcess{}, err
	}

	lp := LaunchedProcess{ProfileID: profileID, PID: osProc.Pid, CDPPort: port, LaunchedAt: time.Now()}
	m.mu.Lock()
	m.processes[profileID] = lp
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		return LaunchedProcess{}, err
	}
	return lp, nil
}

// RegisterExternal validates that a browser is actually reachable at the
// claimed port, then records it as the profile's LaunchedProcess without
// having spawned it ourselves — the path agents use to take over a
// browser a human already started and logged into.
func (m *Manager) RegisterExternal(ctx context.Context, profileID string, pid, cdpPort int) (LaunchedProcess, error) {
	if _, ok := m.profiles.Get(profileID); !ok {
		return LaunchedProcess{}, browsionerr.New(browsionerr.KindProfileNotFound, "profile %q not found", profileID)
	}
	if _, err := discovery.Probe(ctx, cdpPort); err != nil {
		return LaunchedProcess{}, browsionerr.New(browsionerr.KindInvalidArgument, "port %d is not a reachable CDP endpoint: %v", cdpPort, err)
	}

	lp := LaunchedProcess{ProfileID: profileID, PID: pid, CDPPort: cdpPort, LaunchedAt: time.Now()}
	m.mu.Lock()
	m.processes[profileID] = lp
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		return LaunchedProcess{}, err
	}
	return lp, nil
}

// Kill terminates the profile's browser process, drops its Client and
// LaunchedProcess, and persists.
func (m *Manager) Kill(profileID string) error {
	m.mu.Lock()
	lp, ok := m.processes[profileID]
	client := m.clients[profileID]
	delete(m.processes, profileID)
	delete(m.clients, profileID)
	m.mu.Unlock()

	if !ok {
		return browsionerr.New(browsionerr.KindProfileNotRunning, "profile %q has no running browser", profileID)
	}
	if client != nil {
		_ = client.Close()
	}
	if err := killProcess(lp.PID); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "kill pid %d: %v", lp.PID, err)
	}
	return m.persist()
}

// ClientFor returns the CDPClient for a running profile, dialing lazily on
// first use after a launch-or-attach or a restart-time restore.
func (m *Manager) ClientFor(ctx context.Context, profileID string) (*Client, error) {
	m.mu.RLock()
	client, hasClient := m.clients[profileID]
	lp, hasProcess := m.processes[profileID]
	m.mu.RUnlock()

	if hasClient {
		return client, nil
	}
	if !hasProcess {
		return nil, browsionerr.New(browsionerr.KindProfileNotRunning, "profile %q has no running browser", profileID)
	}

	client, err := DialClient(ctx, profileID, lp.CDPPort, m.commandTimeout, m.logCapacity, m.redactor)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.clients[profileID] = client
	m.mu.Unlock()
	return client, nil
}

// Running lists every profile id with a live LaunchedProcess.
func (m *Manager) Running() []LaunchedProcess {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LaunchedProcess, 0, len(m.processes))
	for _, lp := range m.processes {
		out = append(out, lp)
	}
	return out
}

// Sweep removes LaunchedProcess entries whose OS process is gone, closing
// their Clients. Intended to run on a ~30s ticker.
func (m *Manager) Sweep() {
	m.mu.Lock()
	var dead []string
	for id, lp := range m.processes {
		if !processAlive(lp.PID) {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		if c := m.clients[id]; c != nil {
			_ = c.Close()
		}
		delete(m.clients, id)
		delete(m.processes, id)
	}
	m.mu.Unlock()

	if len(dead) > 0 {
		_ = m.persist()
	}
}

// RunSweeper blocks, sweeping on the given interval, until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) allocatePort() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := make(map[int]bool, len(m.processes))
	for _, lp := range m.processes {
		used[lp.CDPPort] = true
	}

	span := m.portHigh - m.portLow + 1
	for i := 0; i < span; i++ {
		port := m.portLow + (m.nextPort-m.portLow+i)%span
		if !used[port] {
			m.nextPort = port + 1
			if m.nextPort > m.portHigh {
				m.nextPort = m.portLow
			}
			return port
		}
	}
	// Every port in range is in use; return the next one anyway and let
	// the subsequent spawn/probe fail loudly rather than silently hang.
	port := m.nextPort
	m.nextPort++
	if m.nextPort > m.portHigh {
		m.nextPort = m.portLow
	}
	return port
}

func (m *Manager) persist() error {
	m.mu.RLock()
	entries := make([]LaunchedProcess, 0, len(m.processes))
	for _, lp := range m.processes {
		entries = append(entries, lp)
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return browsionerr.New(browsionerr.KindIOError, "marshal live sessions: %v", err)
	}
	if err := atomicfile.Write(m.sessionsPath, data, 0o600); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "write live sessions %s: %v", m.sessionsPath, err)
	}
	return nil
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
