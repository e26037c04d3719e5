package tui

import (
	"bonsai-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Options carries everything the TUI needs from the CLI layer.
type Options struct {
	Dir       string
	ServerURL string
	Config    session.Config
}

func Run(opts Options) error {
	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
