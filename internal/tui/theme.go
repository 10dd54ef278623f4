package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colors and styles of the TUI.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Muted   lipgloss.Color

	TitleStyle    lipgloss.Style
	PanelStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	WarningStyle  lipgloss.Style
	DangerStyle   lipgloss.Style
	MutedStyle    lipgloss.Style
	PasswordStyle lipgloss.Style
	LockedStyle   lipgloss.Style
}

// DefaultTheme returns the default theme.
func DefaultTheme() *Theme {
	theme := &Theme{
		Primary: lipgloss.Color("#7AA2F7"),
		Success: lipgloss.Color("#9ECE6A"),
		Warning: lipgloss.Color("#E0AF68"),
		Danger:  lipgloss.Color("#F7768E"),
		Muted:   lipgloss.Color("#565F89"),
	}

	theme.TitleStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginBottom(1)

	theme.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Muted).
		Padding(0, 1)

	theme.SuccessStyle = lipgloss.NewStyle().Foreground(theme.Success)
	theme.WarningStyle = lipgloss.NewStyle().Foreground(theme.Warning)
	theme.DangerStyle = lipgloss.NewStyle().Foreground(theme.Danger).Bold(true)
	theme.MutedStyle = lipgloss.NewStyle().Foreground(theme.Muted)
	theme.PasswordStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	theme.LockedStyle = lipgloss.NewStyle().Foreground(theme.Muted).Faint(true)

	return theme
}
