package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette only, so the output survives any terminal theme.
var (
	// TitleStyle uses ANSI 6 (Cyan) for section titles
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black / Gray) keeps descriptions dimmer than commands
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// SourceStyle ANSI 4 (Blue) for cited sources under an answer
	SourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	// WarnStyle ANSI 3 (Yellow) for degraded-answer notices
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
)
