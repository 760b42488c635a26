// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"strings"

	"fourddev/internal/fspath"
	"fourddev/internal/workspace"
)

const noProjectSelected = "No 4D project file selected."

// RegisterOpenCommands registers the open command group commands.
func RegisterOpenCommands(group *Group, env *Env) {
	group.AddCommand(&Command{
		Name:    "project",
		Summary: "Open a .4DProject file, searching the workspace if none is given",
		Usage:   "Usage: fourddev open project [--app PATH] [--workspace DIR]... [PROJECT]",
		Run:     env.runOpenProject,
	})

	group.AddCommand(&Command{
		Name:    "method",
		Summary: "Open one or more .4dm method files",
		Usage:   "Usage: fourddev open method [--app PATH] FILE...",
		Run: func(ctx context.Context, args []string) error {
			fs := newFlagSet("open method")
			app := fs.String("app", "", "path to 4D.app")
			if err := parseFlags(fs, args); err != nil {
				return err
			}
			if fs.NArg() == 0 {
				return ErrUsage
			}

			msg, err := env.Launcher.OpenMethod(ctx, fs.Args(), resolveOptional(*app))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(env.Stdout, msg)
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "file",
		Summary: "Open a .4dm or .4DProject file",
		Usage:   "Usage: fourddev open file [--app PATH] FILE",
		Run: func(ctx context.Context, args []string) error {
			fs := newFlagSet("open file")
			app := fs.String("app", "", "path to 4D.app")
			if err := parseFlags(fs, args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return ErrUsage
			}

			msg, err := env.Launcher.OpenFile(ctx, fs.Arg(0), resolveOptional(*app))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(env.Stdout, msg)
			return nil
		},
	})
}

func (e *Env) runOpenProject(ctx context.Context, args []string) error {
	fs := newFlagSet("open project")
	app := fs.String("app", "", "path to 4D.app")
	workspaces := fs.StringArray("workspace", nil, "directory to search for projects (repeatable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var project string
	switch fs.NArg() {
	case 0:
		chosen, err := e.chooseProject(ctx, *workspaces)
		if err != nil {
			return err
		}
		if chosen == "" {
			_, _ = fmt.Fprintln(e.Stderr, noProjectSelected)
			return nil
		}
		project = chosen
	case 1:
		project = fs.Arg(0)
	default:
		return ErrUsage
	}

	msg, err := e.Launcher.OpenProject(ctx, project, resolveOptional(*app))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(e.Stdout, msg)
	return nil
}

// chooseProject searches roots (default: the working directory) and
// returns the single project found or the user's pick among several.
// "" means the user cancelled the pick.
func (e *Env) chooseProject(ctx context.Context, roots []string) (string, error) {
	if len(roots) == 0 {
		cwd, err := e.Getwd()
		if err != nil {
			return "", err
		}
		roots = []string{cwd}
	}
	for i, r := range roots {
		roots[i] = fspath.Resolve(r)
	}

	found, err := workspace.FindProjects(roots, workspace.DefaultLimit)
	if err != nil {
		return "", err
	}
	e.Logs.For("cli").Debug("workspace search", "roots", roots, "found", len(found))

	switch {
	case len(found) == 0:
		return "", fmt.Errorf("no 4D project found under %s; pass one explicitly", strings.Join(roots, ", "))
	case len(found) == 1:
		return found[0], nil
	case !e.Interactive():
		return "", fmt.Errorf("found %d 4D projects, pass one explicitly:\n  %s", len(found), strings.Join(found, "\n  "))
	default:
		return e.Pick(ctx, found)
	}
}
