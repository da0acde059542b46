// Package configstore caches widget configurations for the lifetime of an
// SDK session. Entries are keyed by component id, or component id plus
// locale for non-default locales, so locale variants never shadow each
// other. The store deliberately does not deduplicate concurrent fetches;
// callers gate refreshes on their own in-flight flag and use the fetch
// generation to keep superseded responses from overwriting fresher data.
package configstore

import (
	"strings"
	"sync"
	"time"

	"github.com/loopwell/invitekit/internal/schema"
)

// Entry is one cached configuration variant.
type Entry struct {
	Configuration *schema.Configuration
	DeploymentID  string
	CachedAt      time.Time
}

// Store is an in-memory configuration cache. Construct one per SDK session
// with New and inject it; there is no package-level instance.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	generations map[string]uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries:     make(map[string]Entry),
		generations: make(map[string]uint64),
	}
}

func cacheKey(componentID, locale string) string {
	if locale == "" {
		return componentID
	}
	return componentID + ":" + locale
}

// Get retrieves the cached entry for a component and locale. An empty
// locale addresses the default-locale entry.
func (s *Store) Get(componentID, locale string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[cacheKey(componentID, locale)]
	return entry, ok
}

// Set stores a configuration variant, replacing any previous entry for the
// same key. Outstanding fetch generations for the key become stale.
func (s *Store) Set(componentID, locale string, cfg *schema.Configuration, deploymentID string) {
	key := cacheKey(componentID, locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[key]++
	s.entries[key] = Entry{
		Configuration: cfg,
		DeploymentID:  deploymentID,
		CachedAt:      time.Now(),
	}
}

// Clear removes a single variant.
func (s *Store) Clear(componentID, locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, cacheKey(componentID, locale))
}

// ClearComponent removes every locale variant of a component.
func (s *Store) ClearComponent(componentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := componentID + ":"
	for key := range s.entries {
		if key == componentID || strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Reset empties the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
}

// Len reports how many variants are cached.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// BeginFetch issues a fetch generation for a key. The returned value must
// be passed to CompleteFetch; only the most recently issued generation for
// the key is allowed to write.
func (s *Store) BeginFetch(componentID, locale string) uint64 {
	key := cacheKey(componentID, locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[key]++
	return s.generations[key]
}

// CompleteFetch stores the result of the fetch that was issued generation
// gen. It reports false, and stores nothing, when a newer fetch or an
// explicit Set superseded the caller.
func (s *Store) CompleteFetch(componentID, locale string, gen uint64, cfg *schema.Configuration, deploymentID string) bool {
	key := cacheKey(componentID, locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[key] != gen {
		return false
	}
	s.entries[key] = Entry{
		Configuration: cfg,
		DeploymentID:  deploymentID,
		CachedAt:      time.Now(),
	}
	return true
}
