package store

import (
	"sync"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

// SessionStore holds the authenticated principal snapshot and an
// authorization version counter. The counter increments whenever the
// server signals that roles or permissions changed, so cached
// authorization decisions elsewhere can be invalidated cheaply.
type SessionStore struct {
	mu           sync.RWMutex
	profile      *model.Profile
	authzVersion uint64
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SetProfile replaces the session snapshot.
func (s *SessionStore) SetProfile(p *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p.Clone()
}

// Profile returns a copy of the current snapshot, or nil before the
// first refresh completes.
func (s *SessionStore) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// UserID returns the principal's user ID, or "" when no snapshot is held.
func (s *SessionStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return ""
	}
	return s.profile.ID
}

// Superadmin reports whether the current principal is a superadmin.
func (s *SessionStore) Superadmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.profile.Superadmin
}

// BumpAuthzVersion increments the authorization version and returns the
// new value.
func (s *SessionStore) BumpAuthzVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authzVersion++
	return s.authzVersion
}

// AuthzVersion returns the current authorization version.
func (s *SessionStore) AuthzVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authzVersion
}

// Clear drops the snapshot, e.g. when the bearer token is rotated to a
// different principal.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
}
