package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive colors keep the TUI readable on both light and dark
// terminal backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorAccent     lipgloss.TerminalColor = ac("62", "99")   // indigo
	colorMuted      lipgloss.TerminalColor = ac("240", "243") // soft gray
	colorError      lipgloss.TerminalColor = ac("160", "203") // red/rose
	colorOK         lipgloss.TerminalColor = ac("29", "42")   // green
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
	okStyle    = lipgloss.NewStyle().Foreground(colorOK)

	chatUserStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	chatAssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOK)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2)
)

const (
	glyphDone    = "[x]"
	glyphPending = "[ ]"
)

func itoa(n int) string { return strconv.Itoa(n) }
