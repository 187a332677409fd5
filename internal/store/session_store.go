// Package store holds the client-side state containers: the authenticated
// session and the listing catalog. Each container is an explicit value owned
// by its caller; there is no package-level instance.
package store

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"startup_market/internal/model"
)

// Storage keys for the persisted session.
const (
	SessionStorageKey = "auth-storage"
	TokenStorageKey   = "token"
)

type persistedSession struct {
	User            *model.User `json:"user"`
	Token           string      `json:"token"`
	IsAuthenticated bool        `json:"is_authenticated"`
}

// SessionStore holds the current user identity and auth token.
type SessionStore struct {
	mu      sync.RWMutex
	session model.Session
	storage Storage
}

// NewSessionStore creates a store and restores any session persisted in
// storage. A nil storage keeps the session in memory only.
func NewSessionStore(storage Storage) *SessionStore {
	s := &SessionStore{storage: storage}
	s.restore()
	return s
}

func (s *SessionStore) restore() {
	if s.storage == nil {
		return
	}
	raw, ok, err := s.storage.Get(SessionStorageKey)
	if err != nil {
		log.Printf("session: failed to read persisted session: %v", err)
		return
	}
	if !ok {
		return
	}
	var p persistedSession
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("session: ignoring unreadable persisted session: %v", err)
		return
	}
	s.session = model.Session{User: p.User, Token: p.Token, IsAuthenticated: p.IsAuthenticated}
}

// persist must be called with s.mu held.
func (s *SessionStore) persist() {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(persistedSession{
		User:            s.session.User,
		Token:           s.session.Token,
		IsAuthenticated: s.session.IsAuthenticated,
	})
	if err != nil {
		log.Printf("session: failed to encode session: %v", err)
		return
	}
	if err := s.storage.Set(SessionStorageKey, string(data)); err != nil {
		log.Printf("session: failed to persist session: %v", err)
	}
	if err := s.storage.Set(TokenStorageKey, s.session.Token); err != nil {
		log.Printf("session: failed to persist token: %v", err)
	}
}

// Login replaces the current session. Credentials are assumed to have been
// checked by the caller.
func (s *SessionStore) Login(user model.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{
		User:            &user,
		Token:           token,
		IsAuthenticated: true,
		IsLoading:       false,
	}
	s.persist()
}

// Logout clears the session and its persisted copy. Safe to call repeatedly.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{}
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(SessionStorageKey); err != nil {
		log.Printf("session: failed to remove persisted session: %v", err)
	}
	if err := s.storage.Remove(TokenStorageKey); err != nil {
		log.Printf("session: failed to remove persisted token: %v", err)
	}
}

// UpdateUser merges patch into the current user. It does nothing and returns
// false when nobody is logged in.
func (s *SessionStore) UpdateUser(patch model.UserPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.User == nil {
		return false
	}
	u := *s.session.User
	patch.Apply(&u)
	s.session.User = &u
	s.persist()
	return true
}

func (s *SessionStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.IsLoading = loading
}

// State returns a copy of the session.
func (s *SessionStore) State() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

// HandleError applies the session side of a failed backend call: an
// authorization failure ends the session, anything else leaves it alone.
// err is returned unchanged.
func (s *SessionStore) HandleError(err error) error {
	if errors.Is(err, ErrUnauthorized) {
		s.Logout()
	}
	return err
}
