package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/flix/internal/shared"
)

// Session is the persisted identity. The zero value is the anonymous session.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Valid reports whether both fields are present.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && strings.TrimSpace(s.Username) != ""
}

// Empty reports whether both fields are absent.
func (s Session) Empty() bool {
	return s.Token == "" && s.Username == ""
}

// Backend persists a [Session] across process restarts.
//
// Load returns the zero Session when nothing has been stored.
type Backend interface {
	Load() (Session, error)
	Save(s Session) error
	Clear() error
}

// Store is the single source of truth for the current session. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current Session
	backend Backend
}

// NewStore creates a Store primed from backend.
//
// A partially persisted session violates the invariant and is wiped from the backend.
func NewStore(backend Backend) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}

	s, err := backend.Load()
	corrupt := errors.Is(err, shared.ErrInvalidSession)
	if err != nil && !corrupt {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !s.Valid() {
		if corrupt || !s.Empty() {
			if err := backend.Clear(); err != nil {
				return nil, fmt.Errorf("failed to clear partial session: %w", err)
			}
		}
		s = Session{}
	}

	return &Store{current: s, backend: backend}, nil
}

// SetSession stores token and username together.
//
// The backend is written first; memory only changes once persistence succeeded.
func (st *Store) SetSession(token, username string) error {
	s := Session{Token: strings.TrimSpace(token), Username: strings.TrimSpace(username)}
	if !s.Valid() {
		return fmt.Errorf("%w: token and username are both required", shared.ErrInvalidSession)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.backend.Save(s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	st.current = s
	return nil
}

// Token returns the bearer token, if authenticated.
func (st *Store) Token() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Token, st.current.Token != ""
}

// Username returns the signed-in username, if authenticated.
func (st *Store) Username() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Username, st.current.Username != ""
}

// Current returns a copy of the session and whether it is authenticated.
func (st *Store) Current() (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current, st.current.Valid()
}

// Authenticated reports whether a complete session is held.
func (st *Store) Authenticated() bool {
	_, ok := st.Current()
	return ok
}

// Clear drops both fields from memory and the backend. Calling it on an anonymous store is a no-op.
//
// Memory is cleared even when the backend fails so the process never keeps using a session the user asked to drop.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.current = Session{}
	if err := st.backend.Clear(); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}
