// pattern: Imperative Shell

package logging

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath   string // Path to the JSON log file
	MaxSizeMB  int    // Max size in MB before rotation
	MaxBackups int    // Max number of old log files to keep
	MaxAgeDays int    // Max days to keep old log files
	Level      string // Minimum log level (debug, info, warn, error)

	// Console mirrors entries to stderr in human-readable form.
	// Never point this at stdout: the tool server owns it.
	Console bool
}

// LoggerProvider hands out scoped loggers.
// Both Manager and TestLogManager implement this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog front over a named zap logger.
type ScopedLogger struct {
	slog  *slog.Logger
	zap   *zap.Logger
	scope string
}

// Info logs at INFO level.
func (l *ScopedLogger) Info(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

// Debug logs at DEBUG level.
func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

// Warn logs at WARN level.
func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

// Error logs at ERROR level.
func (l *ScopedLogger) Error(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a logger that adds the given key-value pairs to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{
		slog:  l.slog.With(args...),
		zap:   l.zap,
		scope: l.scope,
	}
}

// Scope returns the logger's scope name.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// StdLogger bridges to the standard library logger for libraries that
// only accept a *log.Logger. Output is recorded at ERROR level.
func (l *ScopedLogger) StdLogger() *log.Logger {
	if l.zap == nil {
		return log.New(discard{}, "", 0)
	}
	std, err := zap.NewStdLogAt(l.zap, zapcore.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(l.zap)
	}
	return std
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Manager owns the zap core shared by every scoped logger.
type Manager struct {
	baseZap    *zap.Logger
	fileWriter *lumberjack.Logger
	level      zapcore.Level

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewManager creates a log manager writing JSON lines to cfg.FilePath.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath is required")
	}

	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 14
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(fileWriter), level),
	}
	if cfg.Console {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	return &Manager{
		baseZap:    zap.New(zapcore.NewTee(cores...)),
		fileWriter: fileWriter,
		level:      level,
		loggers:    make(map[string]*ScopedLogger),
	}, nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return encoderCfg
}

// For returns the cached logger for scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	return cachedLogger(&m.mu, m.loggers, m.baseZap, m.level, scope)
}

// Sync flushes buffered entries.
func (m *Manager) Sync() error {
	return m.baseZap.Sync()
}

// Close flushes and closes the log file.
func (m *Manager) Close() error {
	_ = m.Sync()
	return m.fileWriter.Close()
}

func cachedLogger(mu *sync.RWMutex, loggers map[string]*ScopedLogger, base *zap.Logger, level zapcore.Level, scope string) *ScopedLogger {
	mu.RLock()
	if logger, ok := loggers[scope]; ok {
		mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if logger, ok := loggers[scope]; ok {
		return logger
	}

	zapLogger := base.Named(scope)
	logger := &ScopedLogger{
		slog:  slog.New(&zapSlogHandler{zap: zapLogger, level: level}),
		zap:   zapLogger,
		scope: scope,
	}
	loggers[scope] = logger
	return logger
}

// zapSlogHandler adapts zap.Logger to the slog.Handler interface.
type zapSlogHandler struct {
	zap   *zap.Logger
	level zapcore.Level
	attrs []slog.Attr
}

func (h *zapSlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogToZapLevel(level) >= h.level
}

func (h *zapSlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, r.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
	}
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
		return true
	})

	if ce := h.zap.Check(slogToZapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &zapSlogHandler{zap: h.zap, level: h.level, attrs: newAttrs}
}

func (h *zapSlogHandler) WithGroup(name string) slog.Handler {
	return &zapSlogHandler{zap: h.zap.Named(name), level: h.level, attrs: h.attrs}
}

func slogToZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
