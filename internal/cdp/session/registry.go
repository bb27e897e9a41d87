package session

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Registry is the map from CDP target id to TabState for one CDPClient,
// plus the identifier of the currently active tab. Adapted from the
// teacher's TabRegistry (stable per-target ids, one session id per
// process) generalized from a log-file key into the full tab-state map
// the operations layer needs.
type Registry struct {
	sessionID string

	mu           sync.RWMutex
	tabs         map[string]*TabState
	activeTarget string
	stableIDs    map[string]string
	tabCounter   atomic.Int64
}

// NewRegistry creates an empty registry with a fresh session id.
func NewRegistry() *Registry {
	return &Registry{
		sessionID: uuid.New().String(),
		tabs:      make(map[string]*TabState),
		stableIDs: make(map[string]string),
	}
}

// SessionID is the registry's (i.e. the CDPClient's) unique process-lifetime id.
func (r *Registry) SessionID() string {
	return r.sessionID
}

// GetOrCreate returns the TabState for targetID, creating it (with the
// given CDP session id) if this is the first time the target is seen.
func (r *Registry) GetOrCreate(targetID, cdpSessionID string) *TabState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ts, ok := r.tabs[targetID]; ok {
		return ts
	}

	ts := newTabState(targetID, cdpSessionID)
	r.tabs[targetID] = ts
	if r.activeTarget == "" {
		r.activeTarget = targetID
	}
	return ts
}

// Get returns the TabState for targetID, or nil if unknown.
func (r *Registry) Get(targetID string) *TabState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tabs[targetID]
}

// Remove drops a tab on Target.targetDestroyed.
func (r *Registry) Remove(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tabs, targetID)
	if r.activeTarget == targetID {
		r.activeTarget = ""
		for id := range r.tabs {
			r.activeTarget = id
			break
		}
	}
}

// SetActive changes which tab subsequent unscoped operations address.
func (r *Registry) SetActive(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeTarget = targetID
}

// ActiveTargetID returns the currently active tab's target id.
func (r *Registry) ActiveTargetID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeTarget
}

// Active returns the TabState for the active tab, or nil if there is none.
func (r *Registry) Active() *TabState {
	r.mu.RLock()
	targetID := r.activeTarget
	r.mu.RUnlock()
	if targetID == "" {
		return nil
	}
	return r.Get(targetID)
}

// List returns a snapshot of all known target ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tabs))
	for id := range r.tabs {
		ids = append(ids, id)
	}
	return ids
}

// StableID returns a short, sequential, process-lifetime-stable id for a
// target (tab-1, tab-2, ...), generating one on first use.
func (r *Registry) StableID(targetID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.stableIDs[targetID]; ok {
		return id
	}
	n := r.tabCounter.Add(1)
	id := "tab-" + strconv.FormatInt(n, 10)
	r.stableIDs[targetID] = id
	return id
}
