// ABOUTME: Persistence for identity sessions
// ABOUTME: Stores tokens as JSON at XDG paths with owner-only permissions
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harperreed/torque/config"
)

// StoredSession is what survives a restart.
type StoredSession struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// TokenStore loads and saves sessions. Load returns nil, nil when nothing is stored.
type TokenStore interface {
	Load() (*StoredSession, error)
	Save(s *StoredSession) error
	Clear() error
}

// TokenPath returns the XDG-compliant path for the identity session.
func TokenPath() string {
	return filepath.Join(config.DataDir(), "identity-token.json")
}

type FileTokenStore struct {
	Path string
}

// NewFileTokenStore stores sessions at path, or TokenPath() when empty.
func NewFileTokenStore(path string) *FileTokenStore {
	if path == "" {
		path = TokenPath()
	}
	return &FileTokenStore{Path: path}
}

func (fs *FileTokenStore) Save(s *StoredSession) error {
	dir := filepath.Dir(fs.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(fs.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

func (fs *FileTokenStore) Load() (*StoredSession, error) {
	f, err := os.Open(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var s StoredSession
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &s, nil
}

func (fs *FileTokenStore) Clear() error {
	if err := os.Remove(fs.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// memoryStore keeps the session for the life of the process.
type memoryStore struct {
	mu      sync.Mutex
	session *StoredSession
}

func (m *memoryStore) Load() (*StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *memoryStore) Save(s *StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
