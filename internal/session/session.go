// Package session persists the demo login gate. Any non-empty credentials are accepted.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/types"
)

var (
	// ErrNotLoggedIn is returned when no user record is stored
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrMissingCredentials is returned when username or password is blank
	ErrMissingCredentials = errors.New("username and password are required")
)

// Manager loads and stores the session file
type Manager struct {
	mu      sync.Mutex
	path    string
	clock   clock.Clock
	session *types.Session
}

// NewManager creates a manager for the session file at path
func NewManager(path string, c clock.Clock) *Manager {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Manager{
		path:    path,
		clock:   c,
		session: &types.Session{},
	}
}

// Load reads the session file. A missing file means nobody is logged in.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.session = &types.Session{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}
	m.session = &s
	return nil
}

// Login stores the user record
func (m *Manager) Login(username, password string) (types.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return types.Session{}, ErrMissingCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := &types.Session{Username: username, LoggedInAt: m.clock.Now().UTC()}
	if err := m.save(s); err != nil {
		return types.Session{}, err
	}
	m.session = s
	return *s, nil
}

// Logout removes the user record
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	m.session = &types.Session{}
	return nil
}

// Current returns the stored session or ErrNotLoggedIn
func (m *Manager) Current() (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.LoggedIn() {
		return types.Session{}, ErrNotLoggedIn
	}
	return *m.session, nil
}

// LoggedIn reports whether a user record is present
func (m *Manager) LoggedIn() bool {
	_, err := m.Current()
	return err == nil
}

func (m *Manager) save(s *types.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
