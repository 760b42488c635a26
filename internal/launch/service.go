// pattern: Imperative Shell

// Package launch opens 4D projects and method files in the 4D
// application on macOS.
package launch

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"fourddev/internal/fspath"
	"fourddev/internal/logging"
	"fourddev/internal/process"
)

// Config wires a Service. Zero values fall back to the host environment.
type Config struct {
	BundleID  string
	GOOS      string
	LookupEnv LookupEnvFunc
	Runner    process.Runner
	Logs      logging.LoggerProvider

	// AppExists checks located application paths. Defaults to fspath.Exists.
	AppExists func(path string) bool
}

// Service exposes the open-project and open-method operations.
type Service struct {
	bundleID string
	goos     string
	locator  *Locator
	opener   *Opener
	logger   *logging.ScopedLogger
}

// NewService builds a Service sharing one bundle identity and runner
// between its locator and opener.
func NewService(cfg Config) *Service {
	if cfg.BundleID == "" {
		cfg.BundleID = DefaultBundleID
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}

	logFor := func(scope string) *logging.ScopedLogger {
		if cfg.Logs == nil {
			return logging.NopLogger()
		}
		return cfg.Logs.For(scope)
	}

	if cfg.Runner == nil {
		cfg.Runner = process.NewExecRunner(logFor("process"))
	}

	return &Service{
		bundleID: cfg.BundleID,
		goos:     cfg.GOOS,
		locator: NewLocator(LocatorConfig{
			BundleID:  cfg.BundleID,
			GOOS:      cfg.GOOS,
			LookupEnv: cfg.LookupEnv,
			Runner:    cfg.Runner,
			Logger:    logFor("locate"),
			Exists:    cfg.AppExists,
		}),
		opener: NewOpener(cfg.BundleID, cfg.Runner, logFor("process")),
		logger: logFor("launch"),
	}
}

// Locate reports the application a launch would use, if any.
func (s *Service) Locate(ctx context.Context, appPath string) (string, bool) {
	return s.locator.Locate(ctx, appPath)
}

// BundleID returns the bundle identity used for fallback launches.
func (s *Service) BundleID() string {
	return s.bundleID
}

func (s *Service) ensurePlatform() error {
	if s.goos != SupportedGOOS {
		return ErrUnsupportedPlatform
	}
	return nil
}

// OpenProject opens a .4DProject file in 4D. appPath pins a specific
// application and may be empty.
func (s *Service) OpenProject(ctx context.Context, projectPath, appPath string) (string, error) {
	if err := s.ensurePlatform(); err != nil {
		return "", err
	}

	proj, err := resolveTarget(projectPath, ProjectSuffix)
	if err != nil {
		return "", err
	}

	app, _ := s.locator.Locate(ctx, appPath)
	if err := s.opener.Open(ctx, app, proj); err != nil {
		return "", err
	}

	s.logger.Info("opened project", "project", proj, "app", app)
	if app != "" {
		return fmt.Sprintf("Opened project in 4D: %s (app: %s)", proj, app), nil
	}
	return fmt.Sprintf("Opened project in 4D via bundle id (%s): %s", s.bundleID, proj), nil
}

// OpenMethod opens one or more .4dm files in 4D. Every path is validated
// before anything is launched; files then open one at a time in input
// order and the first failure stops the rest.
func (s *Service) OpenMethod(ctx context.Context, methodPaths []string, appPath string) (string, error) {
	if err := s.ensurePlatform(); err != nil {
		return "", err
	}
	if len(methodPaths) == 0 {
		return "", ErrNoMethodPaths
	}

	resolved := make([]string, 0, len(methodPaths))
	for _, p := range methodPaths {
		fp, err := resolveTarget(p, MethodSuffix)
		if err != nil {
			return "", err
		}
		resolved = append(resolved, fp)
	}

	app, _ := s.locator.Locate(ctx, appPath)
	for _, fp := range resolved {
		if err := s.opener.Open(ctx, app, fp); err != nil {
			return "", err
		}
	}

	s.logger.Info("opened methods", "count", len(resolved), "app", app)

	var header string
	if app != "" {
		header = fmt.Sprintf("Opened in 4D (app: %s):\n", app)
	} else {
		header = fmt.Sprintf("Opened in 4D via bundle id (%s):\n", s.bundleID)
	}
	return header + strings.Join(resolved, "\n"), nil
}

// OpenFile dispatches on extension: .4dm files open as methods,
// .4DProject files as projects.
func (s *Service) OpenFile(ctx context.Context, path, appPath string) (string, error) {
	switch {
	case fspath.HasSuffixFold(path, MethodSuffix):
		return s.OpenMethod(ctx, []string{path}, appPath)
	case fspath.HasSuffixFold(path, ProjectSuffix):
		return s.OpenProject(ctx, path, appPath)
	default:
		return "", &UnsupportedFileError{Path: path}
	}
}
