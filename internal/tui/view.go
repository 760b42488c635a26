// pattern: Imperative Shell

package tui

import "strings"

// View renders the picker.
func (m Model) View() string {
	if m.selected != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.TitleStyle().Render(pickerTitle))
	b.WriteString("\n")
	b.WriteString(m.projects.View())
	b.WriteString("\n")
	b.WriteString(m.styles.HelpStyle().Render("enter open • / filter • q cancel"))
	return b.String()
}
