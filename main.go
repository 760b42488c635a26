// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"fourddev/internal/cli"
	"fourddev/internal/config"
	"fourddev/internal/launch"
	"fourddev/internal/logging"
)

var (
	version  = "dev"
	bundleID = launch.DefaultBundleID
)

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/fourddev)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	verbose := flag.BoolP("verbose", "v", false, "mirror log entries to stderr")

	flag.Usage = func() {
		app := cli.NewApp(version)
		app.AddGroup("open", "Open projects and methods in 4D")
		app.AddGroup("mcp", "Manage the tool server registration")
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(config.Dir(*configDir), "fourddev.log"),
		MaxSizeMB:  5,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Level:      cfg.LogLevel,
		Console:    *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("starting", "version", version, "args", flag.Args())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cli.Env{
		Version:   version,
		ConfigDir: *configDir,
		Config:    cfg,
		Launcher: launch.NewService(launch.Config{
			BundleID:  bundleID,
			LookupEnv: lookupEnv(cfg.ResolvedApplicationPath()),
			Logs:      logManager,
		}),
		Logs: logManager,
	}

	if cli.BuildApp(env).Execute(ctx, flag.Args()) {
		if err := env.Serve(ctx); err != nil {
			appLogger.Error("tool server failed", "error", err)
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			_ = logManager.Close()
			os.Exit(1)
		}
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// lookupEnv reads the process environment, answering the application
// override from the config file when the variable is unset.
func lookupEnv(configuredApp string) launch.LookupEnvFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		if key == launch.AppPathEnv && configuredApp != "" {
			return configuredApp, true
		}
		return "", false
	}
}
