// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// projectItem wraps a project path for display in a list.
type projectItem struct {
	path string
}

// Title returns the project file name.
func (i projectItem) Title() string {
	return filepath.Base(i.path)
}

// Description returns the directory holding the project.
func (i projectItem) Description() string {
	return filepath.Dir(i.path)
}

// FilterValue returns the value to filter on.
func (i projectItem) FilterValue() string {
	return i.path
}

// projectDelegate renders project items as name plus directory.
type projectDelegate struct {
	styles *Styles
}

func newProjectDelegate(styles *Styles) projectDelegate {
	return projectDelegate{styles: styles}
}

// Height returns the height of a single item.
func (d projectDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d projectDelegate) Spacing() int {
	return 1
}

// Update handles item-specific updates.
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single project item.
func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(projectItem)
	if !ok {
		return
	}

	titleStyle := d.styles.ItemStyle()
	indicator := "  "
	if index == m.Index() {
		titleStyle = d.styles.SelectedItemStyle()
		indicator = d.styles.AccentStyle().Render("▸ ")
	}

	// Keep directories on one line; long ones lose their tail.
	desc := pi.Description()
	if width := m.Width() - 4; width > 0 {
		desc = ansi.Truncate(desc, width, "…")
	}

	_, _ = fmt.Fprintf(w, "%s%s\n%s%s", indicator, titleStyle.Render(pi.Title()), "  ", d.styles.DirStyle().Render(desc))
}

// toListItems converts project paths to list items.
func toListItems(paths []string) []list.Item {
	items := make([]list.Item, len(paths))
	for i, p := range paths {
		items[i] = projectItem{path: p}
	}
	return items
}
