// Package store holds ResultStore, the thread-safe registry of named check
// outcomes that CheckRunners write to and the Aggregator reads from.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/rscheck/rscheck/internal/model"
)

// ResultStore is a registry of named check outcomes. The key set is fixed
// at construction time (Prepopulate) and never grows or shrinks after
// that, so reads never need to take a lock to discover whether a name
// exists. Each entry is an atomic pointer swap, so writers never block
// readers or each other across distinct names.
type ResultStore struct {
	mu      sync.RWMutex
	entries map[string]*atomic.Pointer[model.Outcome]
}

// New creates an empty ResultStore.
func New() *ResultStore {
	return &ResultStore{entries: make(map[string]*atomic.Pointer[model.Outcome])}
}

// Prepopulate allocates one zero-valued entry per name. Call once at
// startup with the full set of configured check names; Update on a name
// not passed here is a no-op (the name is unknown to the store).
func (s *ResultStore) Prepopulate(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if _, ok := s.entries[name]; ok {
			continue
		}
		p := &atomic.Pointer[model.Outcome]{}
		zero := model.Zero
		p.Store(&zero)
		s.entries[name] = p
	}
}

// Update replaces the entry for name with outcome. A no-op if name was
// never passed to Prepopulate.
func (s *ResultStore) Update(name string, outcome model.Outcome) {
	s.mu.RLock()
	p, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return
	}
	p.Store(&outcome)
}

// Get returns the current outcome for name, or the zero sentinel if name
// is unknown to the store.
func (s *ResultStore) Get(name string) model.Outcome {
	s.mu.RLock()
	p, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return model.Zero
	}
	return *p.Load()
}

// Snapshot returns a point-in-time view of all entries whose name is not
// in exclude. Each returned Outcome is a complete entry; the snapshot as
// a whole need not be a simultaneous cut across entries.
func (s *ResultStore) Snapshot(exclude map[string]struct{}) map[string]model.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Outcome, len(s.entries))
	for name, p := range s.entries {
		if _, skip := exclude[name]; skip {
			continue
		}
		out[name] = *p.Load()
	}
	return out
}

// Names returns the configured check names, in no particular order.
func (s *ResultStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}
