package auth

import (
	"context"
	"sync"
)

// Session is the single entry point other subsystems call to obtain a valid
// credential. The mutex serializes the read-check-write sequence so that two
// callers can never trigger independent refreshes or logins that clobber each
// other's persisted credential.
type Session struct {
	mu      sync.Mutex
	manager *Manager
}

// NewSession creates a session facade over a credential manager.
func NewSession(manager *Manager) *Session {
	return &Session{manager: manager}
}

// EnsureAuthenticated returns a currently-valid credential, plus a flag that
// is true only when a brand-new interactive login occurred.
func (s *Session) EnsureAuthenticated(ctx context.Context) (*Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.manager.ObtainCredential(ctx)
}

// Stored returns the persisted credential, if any, without triggering a flow.
func (s *Session) Stored() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.manager.Stored()
}

// Logout deletes the persisted credential and reports whether one existed.
func (s *Session) Logout() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.manager.Logout()
}
