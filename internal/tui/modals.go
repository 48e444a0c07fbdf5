package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/keybinds"
)

// renderModal centers a bordered box holding content
func (m Model) renderModal(content string, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Padding(1, 2).
		Width(width).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// dialogWidth fits a dialog to the terminal within its min and max widths
func (m Model) dialogWidth() int {
	w := m.width - ModalWidthMarginNarrow
	if w > DialogMaxWidth {
		w = DialogMaxWidth
	}
	if w < DialogMinWidth {
		w = DialogMinWidth
	}
	return w
}

func (m Model) renderNotify() string {
	text := ""
	if len(m.notices) > 0 {
		text = m.notices[0]
	}

	var content strings.Builder
	content.WriteString(styleTitle.Render("Notice"))
	content.WriteString("\n\n")
	content.WriteString(text)
	content.WriteString("\n\n")
	footer := "enter: ok"
	if rest := len(m.notices) - 1; rest > 0 {
		footer += fmt.Sprintf(" | %d more", rest)
	}
	content.WriteString(styleSubtle.Render(footer))

	return m.renderModal(content.String(), m.dialogWidth())
}

func (m Model) renderConfirm() string {
	text := ""
	if m.confirm != nil {
		text = m.confirm.text
	}

	var content strings.Builder
	content.WriteString(styleWarning.Render("Confirm"))
	content.WriteString("\n\n")
	content.WriteString(text)
	content.WriteString("\n\n")
	content.WriteString(styleSubtle.Render("y: yes | n: no"))

	return m.renderModal(content.String(), m.dialogWidth())
}

func (m Model) renderHistory() string {
	var content strings.Builder
	content.WriteString(styleTitle.Render("Request Log"))
	content.WriteString("\n\n")
	content.WriteString(m.historyView.View())
	content.WriteString("\n\n")
	content.WriteString(styleSubtle.Render("↑/↓: scroll | g/G: top/bottom | r: reload | esc: close"))

	return m.renderModal(content.String(), m.width-ModalWidthMargin)
}

// updateHistoryViewSize fits the log viewport to the terminal
func (m *Model) updateHistoryViewSize() {
	w := m.width - ModalWidthMargin - 6
	h := m.height - ModalHeightMargin - ModalOverheadLines - ModalFooterLines
	if w < 20 {
		w = 20
	}
	if h < 3 {
		h = 3
	}
	m.historyView.Width = w
	m.historyView.Height = h
}

// updateHistoryView renders the loaded request log into the viewport
func (m *Model) updateHistoryView() {
	if m.historyErr != "" {
		m.historyView.SetContent(styleError.Render(m.historyErr))
		return
	}
	if len(m.historyRecords) == 0 {
		m.historyView.SetContent(styleSubtle.Render("No requests recorded yet"))
		return
	}

	var b strings.Builder
	b.WriteString(styleSubtle.Render(fmt.Sprintf("%-19s  %-8s  %-6s  %-12s  %6s  %s",
		"TIME", "OP", "STATUS", "USER", "MS", "ERROR")))
	b.WriteString("\n")

	for _, r := range m.historyRecords {
		status := fmt.Sprintf("%-6d", r.Status)
		if r.Status == 0 {
			status = fmt.Sprintf("%-6s", "-")
		}
		if history.Failed(r) {
			status = styleError.Render(status)
		} else {
			status = styleSuccess.Render(status)
		}

		errText := ""
		if r.Error != "" {
			errText = styleError.Render(truncate(r.Error, 60))
		}

		b.WriteString(fmt.Sprintf("%-19s  %-8s  %s  %-12s  %6d  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Operation,
			status,
			truncate(r.UserID, 12),
			r.Duration,
			errText,
		))
	}

	m.historyView.SetContent(b.String())
}

// helpSections are the contexts shown in the help modal
var helpSections = []struct {
	title   string
	context keybinds.Context
}{
	{"Form", keybinds.ContextForm},
	{"Buttons", keybinds.ContextButton},
	{"Select", keybinds.ContextSelect},
	{"Text input", keybinds.ContextTextInput},
	{"Request log", keybinds.ContextHistory},
	{"General", keybinds.ContextGlobal},
}

func (m Model) renderHelp() string {
	var content strings.Builder
	content.WriteString(styleTitle.Render("Keyboard Shortcuts"))
	content.WriteString("\n")
	for _, s := range helpSections {
		actions := m.keys.Actions(s.context)
		if len(actions) == 0 {
			continue
		}
		content.WriteString("\n")
		content.WriteString(styleWarning.Render(s.title))
		content.WriteString("\n")
		for _, a := range actions {
			keys := m.keys.GetBindingString(s.context, a)
			content.WriteString(fmt.Sprintf("  %-18s %s\n", keys, styleSubtle.Render(a.Description())))
		}
	}
	content.WriteString("\n")
	content.WriteString(styleSubtle.Render("type on a select to jump to the best match"))
	content.WriteString("\n")
	content.WriteString(styleSubtle.Render(m.keys.GetBindingString(keybinds.ContextHelp, keybinds.ActionClose) + ": close"))

	return m.renderModal(content.String(), m.dialogWidth())
}
