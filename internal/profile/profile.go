// Package profile implements the Profile store: persistent records
// describing browser identities, owned exclusively by this package and
// persisted as TOML, guarded by a read/write lock with atomic writes.
package profile

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/browsion/browsion-core/internal/atomicfile"
	"github.com/browsion/browsion-core/internal/browsionerr"
)

// Profile is a persistent record describing one browser identity.
type Profile struct {
	ID          string   `toml:"id" json:"id"`
	Name        string   `toml:"name" json:"name"`
	UserDataDir string   `toml:"user_data_dir" json:"user_data_dir"`
	Proxy       string   `toml:"proxy,omitempty" json:"proxy,omitempty"`
	Language    string   `toml:"language,omitempty" json:"language,omitempty"`
	Timezone    string   `toml:"timezone,omitempty" json:"timezone,omitempty"`
	Fingerprint string   `toml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
	Color       string   `toml:"color,omitempty" json:"color,omitempty"`
	Tags        []string `toml:"tags,omitempty" json:"tags,omitempty"`
	Headless    bool     `toml:"headless" json:"headless"`
	ExtraArgs   []string `toml:"extra_args,omitempty" json:"extra_args,omitempty"`
	Description string   `toml:"description,omitempty" json:"description,omitempty"`
}

type document struct {
	Profiles []Profile `toml:"profile"`
}

// Store owns the on-disk TOML profile file and an in-memory index of it.
type Store struct {
	path string

	mu       sync.RWMutex
	profiles map[string]Profile
}

// Load reads the profile store from path, creating an empty store in
// memory if the file doesn't exist yet (it is created on first write).
func Load(path string) (*Store, error) {
	s := &Store{path: path, profiles: make(map[string]Profile)}

	data, err := readFileIfExists(path)
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindIOError, "read profile store %s: %v", path, err)
	}
	if data == nil {
		return s, nil
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, browsionerr.New(browsionerr.KindIOError, "parse profile store %s: %v", path, err)
	}
	for _, p := range doc.Profiles {
		s.profiles[p.ID] = p
	}
	return s, nil
}

// List returns every profile, order not significant to callers (the HTTP
// layer sorts for stable display).
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out
}

// Get returns a single profile by id.
func (s *Store) Get(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// Create assigns a new id (unless p.ID is already set by the caller),
// inserts, and persists.
func (s *Store) Create(p Profile) (Profile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.mu.Lock()
	if _, exists := s.profiles[p.ID]; exists {
		s.mu.Unlock()
		return Profile{}, browsionerr.New(browsionerr.KindInvalidArgument, "profile %q already exists", p.ID)
	}
	s.profiles[p.ID] = p
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Update replaces an existing profile's fields, preserving its id.
func (s *Store) Update(id string, p Profile) (Profile, error) {
	p.ID = id
	s.mu.Lock()
	if _, exists := s.profiles[id]; !exists {
		s.mu.Unlock()
		return Profile{}, browsionerr.New(browsionerr.KindProfileNotFound, "profile %q not found", id)
	}
	s.profiles[id] = p
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Delete removes a profile from the store.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if _, exists := s.profiles[id]; !exists {
		s.mu.Unlock()
		return browsionerr.New(browsionerr.KindProfileNotFound, "profile %q not found", id)
	}
	delete(s.profiles, id)
	s.mu.Unlock()
	return s.persist()
}

// persist serializes the whole store to TOML and writes it atomically
// (temp file + rename), matching how the live-sessions file is written.
func (s *Store) persist() error {
	s.mu.RLock()
	doc := document{Profiles: make([]Profile, 0, len(s.profiles))}
	for _, p := range s.profiles {
		doc.Profiles = append(doc.Profiles, p)
	}
	s.mu.RUnlock()

	data, err := toml.Marshal(doc)
	if err != nil {
		return browsionerr.New(browsionerr.KindIOError, "marshal profile store: %v", err)
	}
	if err := atomicfile.Write(s.path, data, 0o600); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "write profile store %s: %v", s.path, err)
	}
	return nil
}
