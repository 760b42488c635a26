// pattern: Imperative Shell

// Package instance keeps long-running commands to one process per
// config directory.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another process holds the lock.
var ErrAlreadyRunning = errors.New("already running")

// Lock is a held single-instance lock.
type Lock struct {
	fl      *flock.Flock
	pidPath string
}

// Acquire takes the exclusive lock for name in dataDir and records the
// current pid next to it. If another process holds the lock the error
// wraps ErrAlreadyRunning and names that process when known.
func Acquire(dataDir, name string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fl := flock.New(filepath.Join(dataDir, name+".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	pidPath := filepath.Join(dataDir, name+".pid")
	if !locked {
		if pid, ok := ReadPID(pidPath); ok {
			return nil, fmt.Errorf("%s %w (pid %d)", name, ErrAlreadyRunning, pid)
		}
		return nil, fmt.Errorf("%s %w", name, ErrAlreadyRunning)
	}

	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}
	return &Lock{fl: fl, pidPath: pidPath}, nil
}

// Release removes the pid file and releases the lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	_ = os.Remove(l.pidPath)
	_ = l.fl.Unlock()
}

// ReadPID returns the pid recorded at path.
func ReadPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
