package store

import (
	"sync"
	"time"
)

// DefaultPath is the route the console lands on.
const DefaultPath = "/dashboard"

// NavStore tracks the route the console should be showing. Server
// pushed navigation (maintenance mode) writes here; the status server
// exposes it so operators can see where sessions were steered.
type NavStore struct {
	mu        sync.RWMutex
	path      string
	changedAt time.Time
}

// NewNavStore returns a store positioned at DefaultPath.
func NewNavStore() *NavStore {
	return &NavStore{path: DefaultPath}
}

// Navigate moves to path and reports whether the route changed.
func (s *NavStore) Navigate(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == s.path {
		return false
	}
	s.path = path
	s.changedAt = time.Now()
	return true
}

// CurrentPath returns the active route.
func (s *NavStore) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// ChangedAt returns when the route last changed. Zero before the first
// navigation.
func (s *NavStore) ChangedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changedAt
}
