package client

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tupad/organizador/core/usuario"
)

// Session holds the credentials of the signed-in usuario, mirrored in a Store.
type Session struct {
	store Store

	mu    sync.RWMutex
	token string
	user  *usuario.Usuario
}

// NewSession restores a previously persisted session, if any.
func NewSession(store Store) (*Session, error) {
	s := &Session{store: store}
	if _, err := store.Get(keyAuthToken, &s.token); err != nil {
		return nil, err
	}
	var usr usuario.Usuario
	ok, err := store.Get(keyCurrentUser, &usr)
	if err != nil {
		return nil, err
	}
	if ok {
		s.user = &usr
	}
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (usuario.Usuario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return usuario.Usuario{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) Set(token string, usr usuario.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(keyAuthToken, token); err != nil {
		return errors.Wrap(err, "saving token")
	}
	if err := s.store.Set(keyCurrentUser, usr); err != nil {
		return errors.Wrap(err, "saving usuario")
	}
	s.token, s.user = token, &usr
	return nil
}

func (s *Session) SetUser(usr usuario.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(keyCurrentUser, usr); err != nil {
		return errors.Wrap(err, "saving usuario")
	}
	s.user = &usr
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil
	return s.store.Delete(keyAuthToken, keyCurrentUser)
}
