// Package statefile persists the session token and cached profile to a
// JSON file, the CLI analog of the mini-program's device storage.
package statefile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"easystay/internal/domain"
)

type state struct {
	Token   string          `json:"token,omitempty"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

type Store struct {
	path string

	mu sync.Mutex
	st state
}

// Open loads existing state from path, tolerating a missing file.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	// A corrupt state file is treated as logged-out, not fatal.
	if err := json.Unmarshal(b, &s.st); err != nil {
		s.st = state{}
	}
	return s, nil
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Token
}

func (s *Store) SetToken(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Token = tok
	return s.flush()
}

func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Token = ""
	return s.flush()
}

func (s *Store) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Profile == nil {
		return domain.Profile{}, false
	}
	return *s.st.Profile, true
}

func (s *Store) SetProfile(p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Profile = &p
	return s.flush()
}

func (s *Store) ClearProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Profile = nil
	return s.flush()
}

// flush writes via a temp file + rename; the token is a credential, so
// the file stays 0600.
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
