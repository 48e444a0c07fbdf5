package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/usertabs/internal/keybinds"
	"github.com/studiowebux/usertabs/internal/views"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keys.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		m.Cleanup()
		return tea.Quit
	}

	switch m.mode {
	case ModeNotify:
		return m.handleNotifyKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	controls := m.controls()
	focused, hasFocus := m.form.Focused(controls)

	if action, ok := m.keys.Match(keybinds.ContextForm, msg.String()); ok {
		switch action {
		case keybinds.ActionNextTab:
			m.nextTab()
			return nil
		case keybinds.ActionPrevTab:
			m.prevTab()
			return nil
		case keybinds.ActionNextField:
			m.form.Move(1, controls)
			return nil
		case keybinds.ActionPrevField:
			m.form.Move(-1, controls)
			return nil
		case keybinds.ActionSubmit:
			return m.runAction(m.primaryAction())
		case keybinds.ActionOpenHistory:
			return m.openHistory()
		case keybinds.ActionOpenHelp:
			m.mode = ModeHelp
			return nil
		}
	}

	if !hasFocus {
		return nil
	}

	switch focused.kind {
	case controlButton:
		return m.handleButtonKeys(focused, msg)
	case controlSelect:
		return m.handleSelectKeys(focused, msg, controls)
	default:
		return m.handleInputKeys(focused, msg, controls)
	}
}

func (m *Model) handleButtonKeys(c control, msg tea.KeyMsg) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextButton, msg.String())
	switch action {
	case keybinds.ActionActivate:
		return m.runAction(c.action)
	case keybinds.ActionTabCreate:
		m.switchTab(views.TabCreate)
	case keybinds.ActionTabEdit:
		m.switchTab(views.TabEdit)
	case keybinds.ActionTabDelete:
		m.switchTab(views.TabDelete)
	case keybinds.ActionPrevTab:
		m.prevTab()
	case keybinds.ActionNextTab:
		m.nextTab()
	}
	return nil
}

func (m *Model) handleSelectKeys(c control, msg tea.KeyMsg, controls []control) tea.Cmd {
	sel := m.form.Select(c.field)
	if sel == nil {
		return nil
	}

	action, _ := m.keys.Match(keybinds.ContextSelect, msg.String())
	switch action {
	case keybinds.ActionNextField:
		m.form.Move(1, controls)
		return nil
	case keybinds.ActionSelectNext:
		sel.Next()
	case keybinds.ActionSelectPrev:
		sel.Prev()
	case keybinds.ActionQueryBackspace:
		sel.Backspace()
	case keybinds.ActionClearQuery:
		sel.ResetQuery()
		return nil
	default:
		if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
			return nil
		}
		// type-to-select
		sel.Type(string(msg.Runes))
	}

	if err := m.applyInput(c.field, sel.Value()); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

func (m *Model) handleInputKeys(c control, msg tea.KeyMsg, controls []control) tea.Cmd {
	ti := m.form.Input(c.field)
	if ti == nil {
		return nil
	}

	action, _ := m.keys.Match(keybinds.ContextTextInput, msg.String())
	switch action {
	case keybinds.ActionActivate:
		if c.field == fieldIDInput {
			return m.runAction(actionLoad)
		}
		m.form.Move(1, controls)
		return nil
	case keybinds.ActionPaste:
		if text, err := clipboard.ReadAll(); err == nil {
			pos := ti.Position()
			value := ti.Value()
			if pos > len(value) {
				pos = len(value)
			}
			ti.SetValue(value[:pos] + text + value[pos:])
			ti.SetCursor(pos + len(text))
		}
	case keybinds.ActionClearField:
		ti.SetValue("")
	default:
		var cmd tea.Cmd
		*ti, cmd = ti.Update(msg)
		if err := m.applyInput(c.field, ti.Value()); err != nil {
			return tea.Batch(cmd, m.setErrorMessage(err.Error()))
		}
		return cmd
	}

	if err := m.applyInput(c.field, ti.Value()); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

func (m *Model) handleNotifyKeys(msg tea.KeyMsg) tea.Cmd {
	if action, _ := m.keys.Match(keybinds.ContextNotify, msg.String()); action != keybinds.ActionDismiss {
		return nil
	}
	if len(m.notices) > 0 {
		m.notices = m.notices[1:]
	}
	if len(m.notices) == 0 {
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	var answer bool
	switch action, _ := m.keys.Match(keybinds.ContextConfirm, msg.String()); action {
	case keybinds.ActionConfirmYes:
		answer = true
	case keybinds.ActionConfirmNo:
		answer = false
	default:
		return nil
	}
	if m.confirm == nil {
		return nil
	}

	m.confirm.reply <- answer
	m.confirm = nil
	if len(m.notices) > 0 {
		m.mode = ModeNotify
	} else {
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextHistory, msg.String())
	switch action {
	case keybinds.ActionClose:
		m.mode = ModeNormal
		return nil
	case keybinds.ActionReload:
		return m.loadHistory()
	case keybinds.ActionGoToTop:
		m.historyView.GotoTop()
		return nil
	case keybinds.ActionGoToBottom:
		m.historyView.GotoBottom()
		return nil
	}

	var cmd tea.Cmd
	m.historyView, cmd = m.historyView.Update(msg)
	return cmd
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	if action, _ := m.keys.Match(keybinds.ContextHelp, msg.String()); action == keybinds.ActionClose {
		m.mode = ModeNormal
	}
	return nil
}
