// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"fourddev/internal/config"
	"fourddev/internal/fspath"
	"fourddev/internal/logging"
	"fourddev/internal/mcpserver"
	"fourddev/internal/tui"
)

// Launcher is what the commands need from launch.Service.
type Launcher interface {
	OpenProject(ctx context.Context, projectPath, appPath string) (string, error)
	OpenMethod(ctx context.Context, methodPaths []string, appPath string) (string, error)
	OpenFile(ctx context.Context, path, appPath string) (string, error)
	Locate(ctx context.Context, appPath string) (string, bool)
	BundleID() string
}

// Env carries the dependencies shared by every command. Nil fields are
// filled with the process defaults by BuildApp.
type Env struct {
	Version   string
	ConfigDir string
	Config    config.Config
	Launcher  Launcher
	Logs      logging.LoggerProvider

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	ExitFunc func(int)

	// Interactive reports whether a picker can be shown to the user.
	Interactive func() bool
	// Pick asks the user to choose one project. "" means cancelled.
	Pick func(ctx context.Context, paths []string) (string, error)

	GOOS       string
	Getwd      func() (string, error)
	HomeDir    func() (string, error)
	Executable func() (string, error)
}

func (e *Env) withDefaults() {
	if e.Stdin == nil {
		e.Stdin = os.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.ExitFunc == nil {
		e.ExitFunc = os.Exit
	}
	if e.Logs == nil {
		e.Logs = logging.NopProvider()
	}
	if e.Interactive == nil {
		e.Interactive = func() bool { return isTerminal(os.Stdin) && isTerminal(os.Stderr) }
	}
	if e.Pick == nil {
		e.Pick = func(ctx context.Context, paths []string) (string, error) {
			// The picker draws on stderr so stdout stays clean for results.
			return tui.Pick(ctx, paths, e.Config.Theme, os.Stdin, os.Stderr)
		}
	}
	if e.GOOS == "" {
		e.GOOS = runtime.GOOS
	}
	if e.Getwd == nil {
		e.Getwd = os.Getwd
	}
	if e.HomeDir == nil {
		e.HomeDir = os.UserHomeDir
	}
	if e.Executable == nil {
		e.Executable = os.Executable
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(env *Env) *App {
	env.withDefaults()

	app := NewApp(env.Version)
	app.Stderr = env.Stderr
	app.ExitFunc = env.ExitFunc

	app.AddCommand(&Command{
		Name:    "serve",
		Summary: "Run the tool server on stdio",
		Usage:   "Usage: fourddev serve",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 0 {
				return ErrUsage
			}
			return env.Serve(ctx)
		},
	})

	app.AddCommand(&Command{
		Name:    "locate",
		Summary: "Show which 4D application launches would use",
		Usage:   "Usage: fourddev locate [--app PATH]",
		Run:     env.runLocate,
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: fourddev version",
		Run: func(ctx context.Context, args []string) error {
			_, _ = fmt.Fprintln(env.Stdout, env.Version)
			return nil
		},
	})

	openGroup := app.AddGroup("open", "Open projects and methods in 4D")
	RegisterOpenCommands(openGroup, env)

	mcpGroup := app.AddGroup("mcp", "Manage the tool server registration")
	RegisterMCPCommands(mcpGroup, env)

	return app
}

// Serve runs the tool server on the environment's stdin and stdout.
func (e *Env) Serve(ctx context.Context) error {
	srv := mcpserver.New(e.Config.MCP.ServerName, e.Version, e.Launcher, e.Logs)
	return srv.Serve(ctx, e.Stdin, e.Stdout)
}

func (e *Env) runLocate(ctx context.Context, args []string) error {
	fs := newFlagSet("locate")
	app := fs.String("app", "", "path to 4D.app to check first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}

	if path, ok := e.Launcher.Locate(ctx, resolveOptional(*app)); ok {
		_, _ = fmt.Fprintln(e.Stdout, path)
		return nil
	}
	_, _ = fmt.Fprintf(e.Stdout, "4D application not found; launches use bundle id %s\n", e.Launcher.BundleID())
	return nil
}

// resolveOptional makes a user-supplied path absolute, keeping "" as "".
func resolveOptional(p string) string {
	if p == "" {
		return ""
	}
	return fspath.Resolve(p)
}
