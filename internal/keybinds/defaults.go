package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerFormBindings(r)
	registerButtonBindings(r)
	registerSelectBindings(r)
	registerTextInputBindings(r)
	registerDialogBindings(r)
	registerHistoryBindings(r)
	registerHelpBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerFormBindings sets up bindings active on every control of a tab
func registerFormBindings(r *Registry) {
	r.Register(ContextForm, "ctrl+n", ActionNextTab)
	r.Register(ContextForm, "ctrl+p", ActionPrevTab)
	r.RegisterMultiple(ContextForm, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextForm, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextForm, "ctrl+s", ActionSubmit)
	r.Register(ContextForm, "ctrl+l", ActionOpenHistory)
	r.Register(ContextForm, "f1", ActionOpenHelp)
}

// registerButtonBindings sets up bindings for a focused button. Printable
// keys are safe here since no text is being typed.
func registerButtonBindings(r *Registry) {
	r.RegisterMultiple(ContextButton, []string{"enter", " "}, ActionActivate)
	r.Register(ContextButton, "1", ActionTabCreate)
	r.Register(ContextButton, "2", ActionTabEdit)
	r.Register(ContextButton, "3", ActionTabDelete)
	r.Register(ContextButton, "left", ActionPrevTab)
	r.Register(ContextButton, "right", ActionNextTab)
}

// registerSelectBindings sets up bindings for role/organization selects
func registerSelectBindings(r *Registry) {
	r.Register(ContextSelect, "enter", ActionNextField)
	r.Register(ContextSelect, "right", ActionSelectNext)
	r.Register(ContextSelect, "left", ActionSelectPrev)
	r.Register(ContextSelect, "backspace", ActionQueryBackspace)
	r.Register(ContextSelect, "esc", ActionClearQuery)
}

// registerTextInputBindings sets up bindings for text inputs; every other
// key is passed to the input
func registerTextInputBindings(r *Registry) {
	r.Register(ContextTextInput, "enter", ActionActivate)
	r.Register(ContextTextInput, "ctrl+y", ActionPaste)
	r.Register(ContextTextInput, "ctrl+k", ActionClearField)
}

// registerDialogBindings sets up notification and confirmation bindings
func registerDialogBindings(r *Registry) {
	r.RegisterMultiple(ContextNotify, []string{"enter", "esc", " "}, ActionDismiss)
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirmYes)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionConfirmNo)
}

// registerHistoryBindings sets up request log viewer bindings; scrolling
// keys fall through to the viewport
func registerHistoryBindings(r *Registry) {
	r.RegisterMultiple(ContextHistory, []string{"esc", "q", "ctrl+l"}, ActionClose)
	r.Register(ContextHistory, "r", ActionReload)
	r.RegisterMultiple(ContextHistory, []string{"g", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextHistory, []string{"G", "end"}, ActionGoToBottom)
}

// registerHelpBindings sets up help viewer bindings
func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "q", "f1", "enter"}, ActionClose)
}
