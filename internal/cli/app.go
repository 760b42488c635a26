// pattern: Functional Core
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// ErrUsage marks a command invoked with bad arguments. The command's
// usage line is printed instead of the error text.
var ErrUsage = errors.New("invalid usage")

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(ctx context.Context, args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App represents the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	version  string

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	// Overridable for testing.
	ExitFunc func(int)

	// Stderr receives help and error output. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		ExitFunc: os.Exit,
		Stderr:   os.Stderr,
	}
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command.
// Returns true if the tool server should be started, false otherwise.
func (a *App) Execute(ctx context.Context, args []string) bool {
	// No args: serve
	if len(args) == 0 {
		return true
	}

	cmdName := args[0]

	if cmd, ok := a.commands[cmdName]; ok {
		a.run(ctx, cmd, args[1:])
		return false
	}

	if group, ok := a.groups[cmdName]; ok {
		// Group with no subcommand, "help", or --help/-h
		if len(args) < 2 || args[1] == "help" || args[1] == "--help" || args[1] == "-h" {
			group.PrintHelp(a.Stderr)
			return false
		}

		if cmd, ok := group.Commands[args[1]]; ok {
			a.run(ctx, cmd, args[2:])
			return false
		}

		// Unknown command in group
		group.PrintHelp(a.Stderr)
		a.ExitFunc(1)
		return false
	}

	if cmdName == "help" || cmdName == "--help" || cmdName == "-h" {
		a.PrintHelp(a.Stderr)
		return false
	}

	// Unknown command
	a.PrintHelp(a.Stderr)
	a.ExitFunc(1)
	return false
}

// run executes cmd, printing its usage on --help. A failing command
// reports "error: <message>" and exits 1.
func (a *App) run(ctx context.Context, cmd *Command, args []string) {
	for _, arg := range args {
		// Operands after -- are never flags.
		if arg == "--" {
			break
		}
		if arg == "--help" || arg == "-h" {
			_, _ = fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
			return
		}
	}

	err := cmd.Run(ctx, args)
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrUsage):
		if err != ErrUsage {
			_, _ = fmt.Fprintf(a.Stderr, "error: %s\n", err)
		}
		_, _ = fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
	default:
		_, _ = fmt.Fprintf(a.Stderr, "error: %s\n", err)
	}
	a.ExitFunc(1)
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: fourddev [options] [command]\n\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")

	for _, name := range []string{"serve", "locate", "version"} {
		if cmd, ok := a.commands[name]; ok {
			_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
		}
	}

	_, _ = fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Run the tool server on stdio")

	if len(a.groups) > 0 {
		_, _ = fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range []string{"open", "mcp"} {
			if group, ok := a.groups[name]; ok {
				_, _ = fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nUse \"fourddev <group> help\" for group details.\n\n")
	_, _ = fmt.Fprintf(w, "Options:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: fourddev %s <command>\n\n", g.Name)
	_, _ = fmt.Fprintf(w, "Commands:\n")
	// Sort command names for deterministic output
	names := slices.Sorted(maps.Keys(g.Commands))
	for _, name := range names {
		cmd := g.Commands[name]
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	_, _ = fmt.Fprintf(w, "\nUse \"fourddev %s <command> --help\" for command details.\n", g.Name)
}
