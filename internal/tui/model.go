// pattern: Imperative Shell

package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const pickerTitle = "Select a 4D project to open"

// Model is a single-choice picker over project paths.
type Model struct {
	width  int
	height int
	styles *Styles

	projects list.Model

	selected  string
	cancelled bool
}

// NewModel creates a picker listing paths, styled with the named theme.
func NewModel(paths []string, themeName string) Model {
	styles := NewStyles(themeName)

	projects := list.New(toListItems(paths), newProjectDelegate(styles), 0, 0)
	projects.SetShowTitle(false)
	projects.SetShowStatusBar(false)
	projects.SetShowHelp(false)
	projects.SetFilteringEnabled(true)

	return Model{
		styles:   styles,
		projects: projects,
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the chosen path, or "" when nothing was chosen.
func (m Model) Selected() string {
	return m.selected
}

// Cancelled reports whether the user quit without choosing.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Pick runs the picker on the given terminal streams and returns the
// chosen path, or "" if the user cancelled.
func Pick(ctx context.Context, paths []string, themeName string, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(
		NewModel(paths, themeName),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(Model); ok {
		return m.Selected(), nil
	}
	return "", nil
}
