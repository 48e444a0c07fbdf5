package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
)

// historyListLimit caps the rows shown in the request log modal
const historyListLimit = 200

// controls lists the focusable elements of the active tab in display order
func (m *Model) controls() []control {
	var cs []control

	fieldControls := func(skip string) {
		for _, name := range types.FormFields {
			if name == skip {
				continue
			}
			kind := controlInput
			if name == types.FieldRole || name == types.FieldOrganization {
				kind = controlSelect
			}
			cs = append(cs, control{kind: kind, field: name})
		}
	}

	switch m.tabs.Active() {
	case views.TabCreate:
		fieldControls("")
		cs = append(cs, control{kind: controlButton, action: actionCreate})

	case views.TabEdit:
		cs = append(cs,
			control{kind: controlInput, field: fieldIDInput},
			control{kind: controlButton, action: actionLoad},
		)
		if v := m.tabs.Edit(); v != nil {
			if _, ok := v.User(); ok {
				fieldControls(types.FieldUserID)
				cs = append(cs, control{kind: controlButton, action: actionUpdate})
			}
		}

	case views.TabDelete:
		cs = append(cs,
			control{kind: controlInput, field: fieldIDInput},
			control{kind: controlButton, action: actionLoad},
		)
		if v := m.tabs.Delete(); v != nil {
			if _, ok := v.User(); ok {
				cs = append(cs, control{kind: controlButton, action: actionDelete})
			}
		}
	}
	return cs
}

// resetForm builds fresh widgets for the active tab from its view state
func (m *Model) resetForm() {
	m.form = NewFormState(m.roles, m.organizations)
	if !m.animate {
		m.form.StaticCursor()
	}
	m.syncFromView()
	m.form.SetFocus(0, m.controls())
}

// syncFromView copies the active view's state into the widgets
func (m *Model) syncFromView() {
	switch m.tabs.Active() {
	case views.TabCreate:
		v := m.tabs.Create()
		if v == nil {
			return
		}
		for _, name := range types.FormFields {
			m.form.SetValue(name, v.Field(name))
		}

	case views.TabEdit:
		v := m.tabs.Edit()
		if v == nil {
			return
		}
		m.form.SetValue(fieldIDInput, v.IDInput())
		for _, name := range types.FormFields {
			m.form.SetValue(name, v.Field(name))
		}

	case views.TabDelete:
		v := m.tabs.Delete()
		if v == nil {
			return
		}
		m.form.SetValue(fieldIDInput, v.IDInput())
	}
}

// applyInput pushes a widget value into the active view
func (m *Model) applyInput(field, value string) error {
	switch m.tabs.Active() {
	case views.TabCreate:
		if v := m.tabs.Create(); v != nil {
			return v.SetField(field, value)
		}
	case views.TabEdit:
		if v := m.tabs.Edit(); v != nil {
			if field == fieldIDInput {
				v.SetIDInput(value)
				return nil
			}
			return v.SetField(field, value)
		}
	case views.TabDelete:
		if v := m.tabs.Delete(); v != nil && field == fieldIDInput {
			v.SetIDInput(value)
		}
	}
	return nil
}

// switchTab selects tab; a different tab starts from a fresh view
func (m *Model) switchTab(tab views.Tab) {
	if tab == m.tabs.Active() {
		return
	}
	m.tabs.Select(tab)
	m.gen++
	m.resetForm()
}

func (m *Model) nextTab() {
	m.tabs.Next()
	m.gen++
	m.resetForm()
}

func (m *Model) prevTab() {
	m.tabs.Prev()
	m.gen++
	m.resetForm()
}

// primaryAction is what ctrl+s triggers on the active tab
func (m *Model) primaryAction() actionKind {
	switch m.tabs.Active() {
	case views.TabEdit:
		if v := m.tabs.Edit(); v != nil {
			if _, ok := v.User(); !ok {
				return actionLoad
			}
		}
		return actionUpdate
	case views.TabDelete:
		if v := m.tabs.Delete(); v != nil {
			if _, ok := v.User(); !ok {
				return actionLoad
			}
		}
		return actionDelete
	default:
		return actionCreate
	}
}

// runAction starts action on the active view in a command goroutine
func (m *Model) runAction(action actionKind) tea.Cmd {
	gen := m.gen
	var run func(context.Context) error

	switch m.tabs.Active() {
	case views.TabCreate:
		v := m.tabs.Create()
		if v == nil || action != actionCreate || v.Submitting() {
			return nil
		}
		run = v.Submit

	case views.TabEdit:
		v := m.tabs.Edit()
		if v == nil {
			return nil
		}
		switch action {
		case actionLoad:
			if v.Loading() {
				return nil
			}
			run = v.Load
		case actionUpdate:
			if v.Saving() {
				return nil
			}
			run = v.Submit
		}

	case views.TabDelete:
		v := m.tabs.Delete()
		if v == nil {
			return nil
		}
		switch action {
		case actionLoad:
			if v.Loading() {
				return nil
			}
			run = v.Load
		case actionDelete:
			if v.Deleting() {
				return nil
			}
			run = v.Delete
		}
	}

	if run == nil {
		return nil
	}

	do := func() tea.Msg {
		return actionDoneMsg{gen: gen, action: action, err: run(context.Background())}
	}
	return tea.Batch(do, m.startSpinner())
}

func (m *Model) handleActionDone(msg actionDoneMsg) tea.Cmd {
	if msg.gen != m.gen {
		// result of a view that was switched away from
		return nil
	}

	focus := m.form.GetFocus()
	m.syncFromView()

	switch msg.action {
	case actionLoad:
		if msg.err == nil {
			// land on the first editable control after load
			focus = 2
		}
	case actionCreate, actionDelete:
		if msg.err == nil {
			focus = 0
		}
	}
	m.form.SetFocus(focus, m.controls())

	switch {
	case msg.err == nil:
		return m.setStatusMessage(actionSuccessText(msg.action))
	case errors.Is(msg.err, views.ErrDeclined):
		return m.setStatusMessage("Delete cancelled")
	case errors.Is(msg.err, views.ErrInFlight):
		return nil
	default:
		m.logger.Debug("action failed", "action", actionName(msg.action), "error", msg.err)
		return m.setErrorMessage(fmt.Sprintf("%s failed: %v", actionName(msg.action), msg.err))
	}
}

func actionName(a actionKind) string {
	switch a {
	case actionLoad:
		return "load"
	case actionUpdate:
		return "update"
	case actionDelete:
		return "delete"
	default:
		return "create"
	}
}

func actionSuccessText(a actionKind) string {
	switch a {
	case actionLoad:
		return "User loaded"
	case actionUpdate:
		return "User updated"
	case actionDelete:
		return "User deleted"
	default:
		return "User created"
	}
}

// buttonLabel returns the label of an action button, reflecting in-flight state
func (m *Model) buttonLabel(a actionKind) (string, bool) {
	switch a {
	case actionCreate:
		if v := m.tabs.Create(); v != nil {
			return v.SubmitLabel(), v.Submitting()
		}
	case actionLoad:
		if v := m.tabs.Edit(); v != nil {
			return v.LoadLabel(), v.Loading()
		}
		if v := m.tabs.Delete(); v != nil {
			return v.LoadLabel(), v.Loading()
		}
	case actionUpdate:
		if v := m.tabs.Edit(); v != nil {
			return v.SaveLabel(), v.Saving()
		}
	case actionDelete:
		if v := m.tabs.Delete(); v != nil {
			return v.DeleteLabel(), v.Deleting()
		}
	}
	return "", false
}

// openHistory shows the request log modal and loads its rows
func (m *Model) openHistory() tea.Cmd {
	m.mode = ModeHistory
	m.updateHistoryViewSize()
	m.updateHistoryView()
	return m.loadHistory()
}

func (m *Model) loadHistory() tea.Cmd {
	mgr := m.historyManager
	if mgr == nil {
		return func() tea.Msg {
			return historyLoadedMsg{err: errors.New("request log is disabled (history: false)")}
		}
	}
	return func() tea.Msg {
		records, err := mgr.List(context.Background(), history.Filter{Limit: historyListLimit})
		return historyLoadedMsg{records: records, err: err}
	}
}
