package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Session is what the console keeps between runs: the bearer token and the
// profile of the logged in user.
type Session struct {
	Token   string           `yaml:"auth_token"`
	Profile *ops.UserProfile `yaml:"user_profile,omitempty"`
}

// SessionStore loads and persists the session.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// FileSessionStore keeps the session in a YAML file.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore creates a session store at path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: filepath.Clean(path)}
}

// DefaultSessionPath returns ~/.idops/session.yml.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.SessionFileName), nil
}

// Path returns the session file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load reads the session. A missing file yields ErrSessionFileNotFound.
func (s *FileSessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, constants.ErrSessionFileNotFound
		}

		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var session Session

	err = yaml.Unmarshal(data, &session)
	if err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}

	return &session, nil
}

// Save writes the session with owner-only permissions.
func (s *FileSessionStore) Save(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

// Clear removes the session file. Clearing a missing session is not an error.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}

	return nil
}
