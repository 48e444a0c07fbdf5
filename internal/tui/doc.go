/*
Package tui implements the terminal user interface for usertabs.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: Maintains all application state
  - Update: Processes messages and returns commands
  - View: Renders the current state to the terminal

# Key Components

  - model.go: Core state and initialization, defines the Model struct
  - keys.go: Keyboard input handling per mode and focused control
  - render.go: Tab strip, forms and status bar
  - modals.go: Notice, confirmation, request log and help dialogs
  - actions.go: Focus order per tab and the view actions run as commands
  - notifier.go: Bridge from view notifications to program messages

# State Management

The create, edit and delete forms live in internal/views; this package only
mirrors them into widgets:
  - FormState: text inputs, selects and the focused control
  - SelectState: fixed-option choice with fuzzy type-to-select

Both use sync.RWMutex for thread safety. Network calls run inside tea.Cmd
goroutines; their results come back as actionDoneMsg. Each tab switch bumps
a generation counter so results of a discarded view are dropped.

# Confirmation

views.DeleteView asks for confirmation from its command goroutine. The
Notifier sends a confirmMsg carrying a reply channel and blocks until the
operator presses y or n, or the program exits.

# Example Usage

	opts := tui.Options{
		API:     client.New(cfg.BaseURL, cfg.Timeout),
		BaseURL: cfg.BaseURL,
	}
	if err := tui.Run(opts); err != nil {
		log.Fatal(err)
	}
*/
package tui
