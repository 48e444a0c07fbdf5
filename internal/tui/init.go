package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI and blocks until the operator quits
func Run(opts Options) error {
	if opts.Notifier == nil {
		opts.Notifier = NewNotifier()
	}
	defer opts.Notifier.Close()

	m := New(opts)

	// Start TUI (pass pointer since Update uses pointer receiver)
	p := tea.NewProgram(m, tea.WithAltScreen())
	opts.Notifier.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
