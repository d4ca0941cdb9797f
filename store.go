package session

import "sync"

// Status is the session lifecycle state.
type Status string

const (
	// StatusUninitialized means bootstrap has not started.
	StatusUninitialized Status = "uninitialized"
	// StatusLoading means bootstrap is in flight; dependent surfaces should
	// hold off rendering protected content.
	StatusLoading Status = "loading"
	// StatusAnonymous means there is no session.
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticated means identity and profile are both present.
	StatusAuthenticated Status = "authenticated"
)

// Snapshot is one observation of the store. It is either fully populated
// (both identity and profile, matching ids) or fully empty; readers never
// see a torn state.
type Snapshot struct {
	Status   Status
	Identity Identity
	Profile  *Profile
}

// Authenticated reports whether the snapshot carries a session.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Store holds the current session. It is a pure holder: exactly one writer
// (the Manager) and any number of readers.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore returns a store in the uninitialized state.
func NewStore() *Store {
	return &Store{snap: Snapshot{Status: StatusUninitialized}}
}

// Snapshot returns the latest written value. The profile is copied so
// readers cannot mutate store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Profile = s.snap.Profile.Clone()
	return out
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Status
}

// SessionSubject reports the authenticated identity id and role, for route
// guards that cross-check tokens against the live session.
func (s *Store) SessionSubject() (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.Status != StatusAuthenticated || s.snap.Identity == nil || s.snap.Profile == nil {
		return "", "", false
	}

	return s.snap.Identity.ID(), s.snap.Profile.Role.String(), true
}

// write commits a snapshot. Manager-only; the snapshot invariant is
// enforced by the caller, not here.
func (s *Store) write(snap Snapshot) {
	snap.Profile = snap.Profile.Clone()
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
