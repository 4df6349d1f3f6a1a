package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned by Login when verification fails.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNoSession is returned when an operation needs a logged in principal.
	ErrNoSession = errors.New("auth: no active session")
)

// State is the session state.
type State int

const (
	StateLoggedOut State = iota
	StateLoggedIn
)

func (s State) String() string {
	if s == StateLoggedIn {
		return "LOGGED_IN"
	}
	return "LOGGED_OUT"
}

// Snapshot describes the active session.
type Snapshot struct {
	ID        string
	Principal Principal
	StartedAt time.Time
}

// Session tracks at most one logged in principal.
type Session struct {
	mu        sync.Mutex
	verifier  Verifier
	directory Directory
	now       func() time.Time
	newID     func() string

	state   State
	current Snapshot
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithSessionClock overrides the clock used for StartedAt.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionIDGenerator overrides the session id generator.
func WithSessionIDGenerator(gen func() string) SessionOption {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewSession returns a logged out session backed by verifier and directory.
func NewSession(verifier Verifier, directory Directory, opts ...SessionOption) *Session {
	s := &Session{
		verifier:  verifier,
		directory: directory,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the secret and, on success, replaces any active principal.
// On failure the session state is left unchanged.
func (s *Session) Login(ctx context.Context, id, secret string) (Snapshot, error) {
	if s.verifier == nil || s.directory == nil {
		return Snapshot{}, ErrInvalidCredentials
	}
	if !s.verifier.Verify(ctx, id, secret) {
		return Snapshot{}, ErrInvalidCredentials
	}
	principal, err := s.directory.Lookup(ctx, id)
	if err != nil {
		return Snapshot{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoggedIn
	s.current = Snapshot{ID: s.newID(), Principal: principal, StartedAt: s.now()}
	return s.current, nil
}

// Logout always leaves the session logged out. It reports the principal that
// was active, if any.
func (s *Session) Logout() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, was := s.current.Principal, s.state == StateLoggedIn
	s.state = StateLoggedOut
	s.current = Snapshot{}
	return prev, was
}

// Current returns the active session.
func (s *Session) Current() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoggedIn {
		return Snapshot{}, ErrNoSession
	}
	return s.current, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsLoggedIn() bool {
	return s.State() == StateLoggedIn
}
