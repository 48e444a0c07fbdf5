package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/studiowebux/usertabs/internal/types"
)

// fieldIDInput is the control name of the "user_id to load" input
const fieldIDInput = "id"

type controlKind int

const (
	controlInput controlKind = iota
	controlSelect
	controlButton
)

type actionKind int

const (
	actionCreate actionKind = iota
	actionLoad
	actionUpdate
	actionDelete
)

// control is one focusable element of a form
type control struct {
	kind   controlKind
	field  string     // input and select controls
	action actionKind // button controls
}

// FormState holds the widgets of the active tab: text inputs, selects and
// the focused control index
type FormState struct {
	mu sync.RWMutex

	inputs  map[string]*textinput.Model
	selects map[string]*SelectState
	focus   int
}

// NewFormState creates inputs for every scalar field plus the load input,
// and selects for role and organization
func NewFormState(roles, organizations []string) *FormState {
	f := &FormState{
		inputs:  make(map[string]*textinput.Model),
		selects: make(map[string]*SelectState),
	}

	for _, name := range append([]string{fieldIDInput}, types.FormFields...) {
		if name == types.FieldRole || name == types.FieldOrganization {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = FormInputWidth
		if name == types.FieldPassword {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.inputs[name] = &ti
	}

	f.selects[types.FieldRole] = NewSelectState("-- Select Role --", roles)
	f.selects[types.FieldOrganization] = NewSelectState("-- Select Organization --", organizations)
	return f
}

// Input returns the text input for field, or nil
func (f *FormState) Input(field string) *textinput.Model {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.inputs[field]
}

// Select returns the select for field, or nil
func (f *FormState) Select(field string) *SelectState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selects[field]
}

// Value returns the widget value of field
func (f *FormState) Value(field string) string {
	if ti := f.Input(field); ti != nil {
		return ti.Value()
	}
	if s := f.Select(field); s != nil {
		return s.Value()
	}
	return ""
}

// SetValue writes value into the widget for field
func (f *FormState) SetValue(field, value string) {
	if ti := f.Input(field); ti != nil {
		ti.SetValue(value)
		return
	}
	if s := f.Select(field); s != nil {
		s.SetValue(value)
	}
}

// StaticCursor turns off cursor blinking in every input
func (f *FormState) StaticCursor() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ti := range f.inputs {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}
}

// GetFocus returns the focused control index
func (f *FormState) GetFocus() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.focus
}

// SetFocus focuses control i of controls, clamped to the valid range, and
// moves the text cursor into it when it is an input
func (f *FormState) SetFocus(i int, controls []control) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(controls) == 0 {
		f.focus = 0
	} else {
		if i < 0 {
			i = 0
		}
		if i >= len(controls) {
			i = len(controls) - 1
		}
		f.focus = i
	}

	for _, ti := range f.inputs {
		ti.Blur()
	}
	for _, s := range f.selects {
		s.ResetQuery()
	}
	if len(controls) > 0 {
		c := controls[f.focus]
		if c.kind == controlInput {
			if ti := f.inputs[c.field]; ti != nil {
				ti.Focus()
			}
		}
	}
}

// Move shifts focus by delta, wrapping around
func (f *FormState) Move(delta int, controls []control) {
	if len(controls) == 0 {
		return
	}
	n := len(controls)
	next := ((f.GetFocus()+delta)%n + n) % n
	f.SetFocus(next, controls)
}

// Focused returns the focused control
func (f *FormState) Focused(controls []control) (control, bool) {
	i := f.GetFocus()
	if i < 0 || i >= len(controls) {
		return control{}, false
	}
	return controls[i], true
}
