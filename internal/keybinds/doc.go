/*
Package keybinds provides customizable keyboard binding management for the TUI.

# Key Concepts

Contexts:
  - global: bindings available everywhere (ctrl+c)
  - form: any control of the active tab (tabs, focus, submit, modals)
  - button, select, text_input: the focused control kind
  - notify, confirm: dialogs
  - history, help: viewers

Matching checks the specific context first, then global.

# Configuration

Overrides come from the keybinds section of config.yaml, keyed by context
and action:

	keybinds:
	  form:
	    open_history: ["ctrl+o"]
	  confirm:
	    confirm_no: ["n", "esc", "q"]

Listing an action replaces its default keys in that context. Load validates
the result: ctrl+c stays reserved, dialogs and viewers must keep a way out,
and printable keys on the form are reported as warnings.
*/
package keybinds
