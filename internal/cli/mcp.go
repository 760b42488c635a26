// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"

	"fourddev/internal/config"
	"fourddev/internal/instance"
	"fourddev/internal/registration"
	"fourddev/internal/watch"
)

// RegisterMCPCommands registers the mcp command group commands.
func RegisterMCPCommands(group *Group, env *Env) {
	group.AddCommand(&Command{
		Name:    "register",
		Summary: "Add the tool server to the host settings file",
		Usage:   "Usage: fourddev mcp register [--settings PATH]",
		Run: func(ctx context.Context, args []string) error {
			settings, err := parseSettingsFlag("mcp register", args)
			if err != nil {
				return err
			}
			return env.register(env.Config, settings)
		},
	})

	group.AddCommand(&Command{
		Name:    "unregister",
		Summary: "Remove the tool server from the host settings file",
		Usage:   "Usage: fourddev mcp unregister [--settings PATH]",
		Run: func(ctx context.Context, args []string) error {
			settings, err := parseSettingsFlag("mcp unregister", args)
			if err != nil {
				return err
			}
			return env.unregister(env.Config, settings)
		},
	})

	group.AddCommand(&Command{
		Name:    "watch",
		Summary: "Keep the registration in sync with the config file",
		Usage:   "Usage: fourddev mcp watch [--settings PATH]",
		Run: func(ctx context.Context, args []string) error {
			settings, err := parseSettingsFlag("mcp watch", args)
			if err != nil {
				return err
			}
			return env.watchRegistration(ctx, settings)
		},
	})
}

func parseSettingsFlag(name string, args []string) (string, error) {
	fs := newFlagSet(name)
	settings := fs.String("settings", "", "host settings file (default: the platform location)")
	if err := parseFlags(fs, args); err != nil {
		return "", err
	}
	if fs.NArg() != 0 {
		return "", ErrUsage
	}
	return resolveOptional(*settings), nil
}

// settingsStore picks the settings file: the flag, then the config, then
// the platform default.
func (e *Env) settingsStore(cfg config.Config, override string) (*registration.Store, error) {
	path := override
	if path == "" {
		path = cfg.ResolvedSettingsPath()
	}
	if path == "" {
		home, err := e.HomeDir()
		if err != nil {
			return nil, err
		}
		path = registration.DefaultSettingsPath(e.GOOS, home)
	}
	return registration.NewStore(path, e.Logs.For("registration"))
}

// serverEntry describes how the host should start this binary.
func (e *Env) serverEntry(cfg config.Config) (registration.Entry, error) {
	command := cfg.MCP.Command
	if command == "" {
		exe, err := e.Executable()
		if err != nil {
			return registration.Entry{}, fmt.Errorf("resolve executable: %w", err)
		}
		command = exe
	}

	args := cfg.MCP.Args
	if len(args) == 0 {
		args = []string{"serve"}
		if e.ConfigDir != "" {
			args = []string{"--config-dir", e.ConfigDir, "serve"}
		}
	}

	return registration.NewEntry(command, args, cfg.ResolvedApplicationPath()), nil
}

func (e *Env) register(cfg config.Config, settings string) error {
	store, err := e.settingsStore(cfg, settings)
	if err != nil {
		return err
	}
	entry, err := e.serverEntry(cfg)
	if err != nil {
		return err
	}
	if err := store.Register(cfg.MCP.ServerName, entry); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(e.Stdout, "Registered %s in %s\n", cfg.MCP.ServerName, store.Path())
	return nil
}

func (e *Env) unregister(cfg config.Config, settings string) error {
	store, err := e.settingsStore(cfg, settings)
	if err != nil {
		return err
	}
	removed, err := store.Unregister(cfg.MCP.ServerName)
	if err != nil {
		return err
	}
	if removed {
		_, _ = fmt.Fprintf(e.Stdout, "Removed %s from %s\n", cfg.MCP.ServerName, store.Path())
	} else {
		_, _ = fmt.Fprintf(e.Stdout, "%s is not registered in %s\n", cfg.MCP.ServerName, store.Path())
	}
	return nil
}

// syncRegistration registers when the config enables the server and
// removes the entry otherwise.
func (e *Env) syncRegistration(cfg config.Config, settings string) error {
	if cfg.MCP.Enabled {
		return e.register(cfg, settings)
	}
	return e.unregister(cfg, settings)
}

func (e *Env) watchRegistration(ctx context.Context, settings string) error {
	logger := e.Logs.For("watch")

	lock, err := instance.Acquire(config.Dir(e.ConfigDir), "watch")
	if err != nil {
		return err
	}
	defer lock.Release()

	apply := func(cfg config.Config) {
		if err := e.syncRegistration(cfg, settings); err != nil {
			logger.Error("registration sync failed", "error", err)
			_, _ = fmt.Fprintf(e.Stderr, "error: %s\n", err)
		}
	}

	// Bring the settings file in line before waiting for edits.
	if err := e.syncRegistration(e.Config, settings); err != nil {
		return err
	}

	w, err := watch.New(config.PathIn(e.ConfigDir), apply, logger, watch.Options{})
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
