// pattern: Imperative Shell

// Package watch reloads the config file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"fourddev/internal/config"
	"fourddev/internal/logging"
)

const (
	defaultDebounce     = 200 * time.Millisecond
	defaultPollInterval = 5 * time.Second
)

// Options tunes change detection. Zero values use the defaults.
type Options struct {
	// Debounce coalesces bursts of events from a single save.
	Debounce time.Duration
	// PollInterval re-checks the file in case events were missed.
	PollInterval time.Duration
}

// fingerprint identifies one on-disk version of the file.
type fingerprint struct {
	exists  bool
	size    int64
	modTime time.Time
}

// Watcher calls onChange with the reloaded config each time the file
// at path changes. The file does not need to exist yet.
type Watcher struct {
	path     string
	onChange func(config.Config)
	logger   *logging.ScopedLogger
	opts     Options
	watcher  *fsnotify.Watcher
	last     fingerprint
}

// New creates a watcher for the config file at path.
func New(path string, onChange func(config.Config), logger *logging.ScopedLogger, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   logger,
		opts:     opts,
		watcher:  watcher,
		last:     stat(path),
	}, nil
}

// Run blocks until ctx is cancelled, reloading on every change.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	// Watch the parent directory so creation and editor rename-saves are seen.
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	w.logger.Info("watching config", "path", w.path)

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debug("config event", "op", event.Op.String())
			debounce.Reset(w.opts.Debounce)

		case <-debounce.C:
			w.check()

		case <-ticker.C:
			w.check()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// check reloads the file if its fingerprint moved since the last check.
func (w *Watcher) check() {
	fp := stat(w.path)
	if fp == w.last {
		return
	}
	w.last = fp

	cfg, err := config.LoadFrom(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path, "exists", fp.exists)
	w.onChange(cfg)
}

func stat(path string) fingerprint {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{exists: true, size: info.Size(), modTime: info.ModTime()}
}
