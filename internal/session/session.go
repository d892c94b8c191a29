// Package session owns the backend session token: where it is persisted
// and how the client reads it.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/chukwumela909/project-bolt/internal/config"
	"github.com/chukwumela909/project-bolt/internal/logging"
)

// EnvToken overrides any persisted token when set.
const EnvToken = "STAKEDASH_TOKEN"

const kernelKeyName = "stakedash-session"

// Session is a token holder backed by a Store. It satisfies
// client.TokenSource.
type Session struct {
	mu     sync.Mutex
	store  Store
	token  string
	loaded bool
	env    bool
}

// New wraps store. A non-empty STAKEDASH_TOKEN takes precedence over it.
func New(store Store) *Session {
	s := &Session{store: store}
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		s.token = tok
		s.loaded = true
		s.env = true
	}
	return s
}

// Open picks a backing store from cfg and wraps it.
func Open(cfg config.SessionConfig) (*Session, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return New(store), nil
}

// OpenStore resolves cfg.Backend to a Store. "auto" tries the platform
// keyring, then the kernel keyring, then the session file.
func OpenStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "keyring":
		return OpenKeyring(cfg.Service)
	case "keyctl":
		return NewKernelStore(kernelKeyName)
	case "file":
		return NewFileStore(cfg.FilePath), nil
	case "memory":
		return NewMemoryStore(), nil
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}

	var errs []error
	ks, err := OpenKeyring(cfg.Service)
	if err == nil {
		// Secret Service can open without a running daemon; probe it.
		if _, err = ks.Load(); err == nil {
			return ks, nil
		}
	}
	errs = append(errs, err)

	kern, err := NewKernelStore(kernelKeyName)
	if err == nil {
		return kern, nil
	}
	errs = append(errs, err)

	logging.Debug("falling back to session file",
		"path", cfg.FilePath,
		logging.Err(errors.Join(errs...)))
	return NewFileStore(cfg.FilePath), nil
}

// Token returns the current session token or "" when logged out.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.token, nil
	}
	tok, err := s.store.Load()
	if err != nil {
		return "", err
	}
	s.token = strings.TrimSpace(tok)
	s.loaded = true
	return s.token, nil
}

// Login persists token as the active session.
func (s *Session) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty session token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	s.env = false
	return nil
}

// Logout removes the persisted token. An environment override still
// applies to later processes.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.token = ""
	s.loaded = true
	s.env = false
	return nil
}

// Source names where the active token came from.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.env {
		return "environment (" + EnvToken + ")"
	}
	return s.store.Name()
}
