package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	flavor catppuccin.Flavor
}

func NewStyles(themeName string) *Styles {
	flavor := flavorFromName(themeName)
	return &Styles{flavor: flavor}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Mauve())).
		MarginBottom(1)
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0())).
		MarginTop(1)
}

func (s *Styles) ItemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) SelectedItemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Mauve()))
}

func (s *Styles) DirStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext0()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Teal()))
}
