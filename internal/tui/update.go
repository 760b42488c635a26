// pattern: Imperative Shell

package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Title and help lines take four rows with their margins.
		m.projects.SetSize(msg.Width, max(msg.Height-4, 3))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		// While filtering, keys belong to the filter input.
		if m.projects.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.projects.SelectedItem().(projectItem); ok {
				m.selected = item.path
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.projects, cmd = m.projects.Update(msg)
	return m, cmd
}
