// ABOUTME: Fallback persistence for the operator's session credential
// ABOUTME: File-backed token store with an in-memory variant for tests

package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoCredential is returned by Read when no fallback token is stored.
var ErrNoCredential = errors.New("no credential stored")

// Store persists the fallback session token. The cookie half of the
// credential is owned by the remote authority's response headers; this store
// only ever holds the body-carried twin.
//
// Present is a cheap existence hint, never proof of validity: only a
// successful identity resolution against the authority establishes that.
type Store interface {
	Save(token string) error
	Read() (string, error)
	Clear() error
	Present() bool
}

// FileStore persists the token to a single file with 0600 permissions,
// the same way CLI tools in this codebase store their API tokens.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the token, creating parent directories as needed.
func (s *FileStore) Save(token string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Read returns the stored token, or ErrNoCredential if absent or empty.
func (s *FileStore) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("reading credential file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Clear removes the stored token. Clearing an already-empty store is not an
// error: logout paths call Clear unconditionally.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}

// Present reports whether a non-empty token file exists.
func (s *FileStore) Present() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Size() > 0
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu    sync.Mutex
	token string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Save stores the token.
func (s *MemStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Read returns the stored token, or ErrNoCredential if absent.
func (s *MemStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

// Clear removes the stored token.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Present reports whether a token is stored.
func (s *MemStore) Present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}
