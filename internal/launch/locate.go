// pattern: Imperative Shell

package launch

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"sort"
	"strings"

	"fourddev/internal/fspath"
	"fourddev/internal/logging"
	"fourddev/internal/process"
)

const (
	// DefaultBundleID identifies 4D for the macOS launch service.
	DefaultBundleID = "com.4D.4D"

	// AppPathEnv names the environment variable holding an application override.
	AppPathEnv = "FOURD_APP"

	// SupportedGOOS is the only platform the launch operations run on.
	SupportedGOOS = "darwin"

	applicationsDir = "/Applications"
	bundleSuffix    = ".app"
)

// LookupEnvFunc reads an environment variable.
type LookupEnvFunc func(key string) (string, bool)

// Strategy is one step of application discovery. It returns the
// application path and true, or false to let the next step run.
type Strategy func(ctx context.Context, preferred string) (string, bool)

// LocatorConfig configures a Locator. Zero values fall back to the host.
type LocatorConfig struct {
	BundleID  string
	GOOS      string
	LookupEnv LookupEnvFunc
	Runner    process.Runner
	Logger    *logging.ScopedLogger

	// Exists checks candidate paths. Defaults to fspath.Exists.
	Exists func(path string) bool
}

// Locator finds the 4D application bundle to launch with.
type Locator struct {
	bundleID   string
	goos       string
	lookupEnv  LookupEnvFunc
	runner     process.Runner
	logger     *logging.ScopedLogger
	exists     func(string) bool
	strategies []Strategy
}

// NewLocator creates a Locator with the standard discovery order:
// explicit override, environment override, then Spotlight metadata search.
func NewLocator(cfg LocatorConfig) *Locator {
	l := &Locator{
		bundleID:  cfg.BundleID,
		goos:      cfg.GOOS,
		lookupEnv: cfg.LookupEnv,
		runner:    cfg.Runner,
		logger:    cfg.Logger,
		exists:    cfg.Exists,
	}
	if l.bundleID == "" {
		l.bundleID = DefaultBundleID
	}
	if l.goos == "" {
		l.goos = runtime.GOOS
	}
	if l.lookupEnv == nil {
		l.lookupEnv = os.LookupEnv
	}
	if l.exists == nil {
		l.exists = fspath.Exists
	}
	if l.logger == nil {
		l.logger = logging.NopLogger()
	}
	if l.runner == nil {
		l.runner = process.NewExecRunner(l.logger)
	}

	l.strategies = []Strategy{
		l.explicitOverride,
		l.environmentOverride,
		l.metadataSearch,
	}
	return l
}

// BundleID returns the bundle identity used for metadata search.
func (l *Locator) BundleID() string {
	return l.bundleID
}

// Locate runs the discovery strategies in order and returns the first
// application path found. false means no concrete path: launch by
// bundle identity instead. Every returned path existed when checked.
func (l *Locator) Locate(ctx context.Context, preferred string) (string, bool) {
	for _, strategy := range l.strategies {
		if app, ok := strategy(ctx, preferred); ok {
			l.logger.Debug("located application", "app", app)
			return app, true
		}
	}
	l.logger.Debug("no application path found, using bundle id", "bundle_id", l.bundleID)
	return "", false
}

func (l *Locator) explicitOverride(_ context.Context, preferred string) (string, bool) {
	if preferred != "" && l.exists(preferred) {
		return preferred, true
	}
	return "", false
}

func (l *Locator) environmentOverride(_ context.Context, _ string) (string, bool) {
	envPath, ok := l.lookupEnv(AppPathEnv)
	if ok && envPath != "" && l.exists(envPath) {
		return envPath, true
	}
	return "", false
}

// metadataSearch asks Spotlight for every bundle with our identifier.
// Failures of any kind just mean "nothing found".
func (l *Locator) metadataSearch(ctx context.Context, _ string) (string, bool) {
	if l.goos != SupportedGOOS {
		return "", false
	}

	query := "kMDItemCFBundleIdentifier == '" + l.bundleID + "'"
	out, err := l.runner.Output(ctx, "mdfind", query)
	if err != nil {
		l.logger.Debug("metadata search failed", "error", err)
		return "", false
	}

	// The index can lag behind deletes and moves.
	for _, candidate := range ParseCandidates(string(out)) {
		if l.exists(candidate) {
			return candidate, true
		}
		l.logger.Debug("skipping stale metadata result", "app", candidate)
	}
	return "", false
}

// ParseCandidates extracts application bundles from mdfind output and
// orders them: bundles under /Applications first, then lexicographically.
func ParseCandidates(output string) []string {
	var candidates []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasSuffix(line, bundleSuffix) {
			continue
		}
		candidates = append(candidates, line)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := candidateTier(candidates[i]), candidateTier(candidates[j])
		if ti != tj {
			return ti < tj
		}
		return candidates[i] < candidates[j]
	})
	return candidates
}

func candidateTier(p string) int {
	if strings.HasPrefix(p, applicationsDir+"/") {
		return 0
	}
	return 1
}
