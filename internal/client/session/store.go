package session

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the bearer token between client runs.
type TokenStore interface {
	// Load returns the persisted token, or "" when none is stored.
	Load() (string, error)
	// Save persists the token.
	Save(token string) error
	// Clear removes the persisted token. Clearing an absent token is not an error.
	Clear() error
}

// FileTokenStore keeps the token in a single well-known file with 0600 perms.
type FileTokenStore struct {
	path string
}

// DefaultTokenPath returns the token file location under the user home dir.
func DefaultTokenPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".imagehub_token")
}

// NewFileTokenStore returns a store backed by the given file path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the token from disk.
func (s *FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes the token to disk with owner-only permissions.
func (s *FileTokenStore) Save(token string) error {
	return os.WriteFile(s.path, []byte(token), 0600)
}

// Clear removes the token file.
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
