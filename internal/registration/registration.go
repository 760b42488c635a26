// pattern: Imperative Shell

// Package registration adds and removes this tool's server entry in a
// host's MCP settings file.
package registration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"fourddev/internal/launch"
	"fourddev/internal/logging"
)

// ErrNoSettingsPath is returned when no settings file is configured and
// the platform has no default location.
var ErrNoSettingsPath = errors.New("MCP configuration path not supported on this platform yet")

const serversKey = "mcpServers"

// Entry is the server definition written under mcpServers.<name>.
type Entry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// NewEntry builds an entry launching command with args. The application
// override is exported to the server through FOURD_APP when set.
func NewEntry(command string, args []string, appPath string) Entry {
	if args == nil {
		args = []string{}
	}
	e := Entry{Command: command, Args: args}
	if appPath != "" {
		e.Env = map[string]string{launch.AppPathEnv: appPath}
	}
	return e
}

// DefaultSettingsPath returns the host settings file for goos, or "" when
// the platform has no known location.
func DefaultSettingsPath(goos, home string) string {
	if goos != "darwin" {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "Code", "User",
		"globalStorage", "saoudrizwan.claude-dev", "settings", "cline_mcp_settings.json")
}

// Store edits one settings file.
type Store struct {
	path   string
	logger *logging.ScopedLogger
}

// NewStore creates a Store for the settings file at path.
func NewStore(path string, logger *logging.ScopedLogger) (*Store, error) {
	if path == "" {
		return nil, ErrNoSettingsPath
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Register adds or replaces the named server entry, keeping everything
// else in the file.
func (s *Store) Register(name string, entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	return s.withLock(func() error {
		doc, err := s.read()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("replacing unreadable settings file", "path", s.path, "error", err)
			}
			doc = map[string]any{}
		}

		servers, ok := doc[serversKey].(map[string]any)
		if !ok {
			servers = map[string]any{}
		}
		servers[name] = entry
		doc[serversKey] = servers

		if err := s.write(doc); err != nil {
			return err
		}
		s.logger.Info("registered server", "name", name, "path", s.path)
		return nil
	})
}

// Unregister removes the named server entry. It reports whether an entry
// was removed; a missing file is not an error.
func (s *Store) Unregister(name string) (bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return false, nil
	}

	var removed bool
	err := s.withLock(func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		servers, ok := doc[serversKey].(map[string]any)
		if !ok {
			return nil
		}
		if _, ok := servers[name]; !ok {
			return nil
		}
		delete(servers, name)
		if err := s.write(doc); err != nil {
			return err
		}
		removed = true
		s.logger.Info("unregistered server", "name", name, "path", s.path)
		return nil
	})
	return removed, err
}

// Lookup returns the raw entry registered under name, if any.
func (s *Store) Lookup(name string) (map[string]any, bool, error) {
	doc, err := s.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	servers, ok := doc[serversKey].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	entry, ok := servers[name].(map[string]any)
	return entry, ok, nil
}

// withLock serializes edits across processes with a sibling lock file.
func (s *Store) withLock(fn func() error) error {
	fl := flock.New(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer func() { _ = fl.Unlock() }()
	return fn()
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (s *Store) write(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
