// Package auth keeps the session token and runs the login, registration
// and password-reset flows.
package auth

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/five82/shelf/internal/localstore"
)

// TokenKey is the storage key of the session token.
const TokenKey = "token"

// KV is the keyed storage the session lives in. *localstore.Store
// implements it.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Session is the opaque token of the signed-in user. Its presence is the
// only gate on the storefront; it is never validated locally.
type Session struct {
	kv KV

	mu    sync.RWMutex
	token string
}

// LoadSession reads any stored token from kv.
func LoadSession(kv KV) (*Session, error) {
	s := &Session{kv: kv}
	data, err := kv.Get(TokenKey)
	switch {
	case err == nil:
		s.token = string(data)
	case errors.Is(err, localstore.ErrNotFound):
	default:
		return s, errors.Wrap(err, "load session")
	}
	return s, nil
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Token is the stored token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores token.
func (s *Session) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := s.kv.Set(TokenKey, []byte(token)); err != nil {
		return errors.Wrap(err, "store token")
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear removes the token. The in-memory token is dropped even if the
// storage removal fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if err := s.kv.Remove(TokenKey); err != nil {
		return errors.Wrap(err, "remove token")
	}
	return nil
}
