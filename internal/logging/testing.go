// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

type nopProvider struct{}

func (nopProvider) For(string) *ScopedLogger { return NopLogger() }

// NopProvider returns a provider whose loggers discard all output.
func NopProvider() LoggerProvider {
	return nopProvider{}
}

// TestLogManager records every entry in memory so tests can assert on them.
type TestLogManager struct {
	baseZap  *zap.Logger
	observed *observer.ObservedLogs

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a provider that captures entries at DEBUG and above.
func NewTestLogManager() *TestLogManager {
	core, observed := observer.New(zapcore.DebugLevel)
	return &TestLogManager{
		baseZap:  zap.New(core),
		observed: observed,
		loggers:  make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	return cachedLogger(&m.mu, m.loggers, m.baseZap, zapcore.DebugLevel, scope)
}

// Entries returns every captured entry in order.
func (m *TestLogManager) Entries() []observer.LoggedEntry {
	return m.observed.All()
}

// Messages returns the messages captured for scope, in order.
func (m *TestLogManager) Messages(scope string) []string {
	var msgs []string
	for _, e := range m.observed.FilterLoggerName(scope).All() {
		msgs = append(msgs, e.Message)
	}
	return msgs
}
