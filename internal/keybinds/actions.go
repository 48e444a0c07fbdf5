package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal    Context = "global"     // Available everywhere
	ContextForm      Context = "form"       // Any control of the active tab
	ContextButton    Context = "button"     // Focused action button
	ContextSelect    Context = "select"     // Focused role/organization select
	ContextTextInput Context = "text_input" // Focused text input
	ContextNotify    Context = "notify"     // Notification dialog
	ContextConfirm   Context = "confirm"    // Confirmation dialog
	ContextHistory   Context = "history"    // Request log viewer
	ContextHelp      Context = "help"       // Help viewer
)

// AllContexts lists every context in help order
var AllContexts = []Context{
	ContextForm,
	ContextButton,
	ContextSelect,
	ContextTextInput,
	ContextHistory,
	ContextNotify,
	ContextConfirm,
	ContextHelp,
	ContextGlobal,
}

const (
	// Global actions
	ActionQuitForce Action = "quit_force" // Quit application (ctrl+c)

	// Tabs
	ActionNextTab   Action = "next_tab"
	ActionPrevTab   Action = "prev_tab"
	ActionTabCreate Action = "tab_create"
	ActionTabEdit   Action = "tab_edit"
	ActionTabDelete Action = "tab_delete"

	// Form navigation and submission
	ActionNextField   Action = "next_field"
	ActionPrevField   Action = "prev_field"
	ActionSubmit      Action = "submit"       // Primary action of the active tab
	ActionActivate    Action = "activate"     // Press the focused control
	ActionOpenHistory Action = "open_history" // Request log
	ActionOpenHelp    Action = "open_help"

	// Select fields
	ActionSelectNext     Action = "select_next"
	ActionSelectPrev     Action = "select_prev"
	ActionQueryBackspace Action = "query_backspace"
	ActionClearQuery     Action = "clear_query"

	// Text inputs
	ActionPaste      Action = "paste"
	ActionClearField Action = "clear_field"

	// Dialogs
	ActionDismiss    Action = "dismiss"
	ActionConfirmYes Action = "confirm_yes"
	ActionConfirmNo  Action = "confirm_no"

	// Viewers
	ActionClose      Action = "close"
	ActionReload     Action = "reload"
	ActionGoToTop    Action = "go_to_top"
	ActionGoToBottom Action = "go_to_bottom"
)

// descriptions are the help texts per action
var descriptions = map[Action]string{
	ActionQuitForce:      "quit",
	ActionNextTab:        "next tab",
	ActionPrevTab:        "previous tab",
	ActionTabCreate:      "create tab",
	ActionTabEdit:        "edit tab",
	ActionTabDelete:      "delete tab",
	ActionNextField:      "next field",
	ActionPrevField:      "previous field",
	ActionSubmit:         "submit the active tab",
	ActionActivate:       "press / load on the id field",
	ActionOpenHistory:    "request log",
	ActionOpenHelp:       "this help",
	ActionSelectNext:     "next option",
	ActionSelectPrev:     "previous option",
	ActionQueryBackspace: "delete typed character",
	ActionClearQuery:     "clear typed query",
	ActionPaste:          "paste from clipboard",
	ActionClearField:     "clear field",
	ActionDismiss:        "dismiss",
	ActionConfirmYes:     "yes",
	ActionConfirmNo:      "no",
	ActionClose:          "close",
	ActionReload:         "reload",
	ActionGoToTop:        "top",
	ActionGoToBottom:     "bottom",
}

// Description returns the help text of an action
func (a Action) Description() string {
	if d, ok := descriptions[a]; ok {
		return d
	}
	return string(a)
}

// IsKnown reports whether a names a defined action
func (a Action) IsKnown() bool {
	_, ok := descriptions[a]
	return ok
}

// IsKnown reports whether c names a defined context
func (c Context) IsKnown() bool {
	for _, k := range AllContexts {
		if k == c {
			return true
		}
	}
	return false
}
