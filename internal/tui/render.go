package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/usertabs/internal/keybinds"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(colorGray).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Padding(0, 1)

	styleButton = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorGray)

	styleButtonFocused = styleButton.
				BorderForeground(colorGreen).
				Foreground(colorGreen).
				Bold(true)
)

// fieldLabels are the form labels per field
var fieldLabels = map[string]string{
	fieldIDInput:            "Enter user_id",
	types.FieldUserID:       "User ID",
	types.FieldUsername:     "Username",
	types.FieldEmail:        "Email",
	types.FieldPassword:     "Password",
	types.FieldFirstName:    "First Name",
	types.FieldLastName:     "Last Name",
	types.FieldPhoneNumber:  "Phone Number",
	types.FieldRole:         "Role",
	types.FieldOrganization: "Organization",
}

// renderMain renders the tab strip, the active form and the status bar
func (m Model) renderMain() string {
	header := styleTitle.Render("usertabs")
	if m.baseURL != "" {
		header += "  " + styleSubtle.Render(m.baseURL)
	}

	formWidth := min(m.width-2, FormLabelWidth+FormInputWidth+8)
	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(formWidth).
		Padding(0, 1).
		Render(m.renderForm())

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderTabs(),
		form,
	)

	// Keep the status bar on the last line
	gap := m.height - lipgloss.Height(body) - 1
	if gap < 0 {
		gap = 0
	}
	return body + strings.Repeat("\n", gap+1) + m.renderStatusBar()
}

// renderTabs renders the tab strip
func (m Model) renderTabs() string {
	active := m.tabs.Active()
	tabs := make([]string, 0, len(views.AllTabs))
	for i, t := range views.AllTabs {
		label := fmt.Sprintf("%d %s", i+1, t.String())
		if t == active {
			tabs = append(tabs, styleTabActive.Render(label))
		} else {
			tabs = append(tabs, styleTabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

// renderForm renders the active tab's form
func (m Model) renderForm() string {
	var b strings.Builder
	controls := m.controls()
	focus := m.form.GetFocus()

	focusedField := ""
	focusedAction := actionKind(-1)
	if focus >= 0 && focus < len(controls) {
		if controls[focus].kind == controlButton {
			focusedAction = controls[focus].action
		} else {
			focusedField = controls[focus].field
		}
	}

	tab := m.tabs.Active()
	b.WriteString(styleTitle.Render(tab.String()))
	b.WriteString("\n\n")

	switch tab {
	case views.TabCreate:
		for _, name := range types.FormFields {
			b.WriteString(m.renderField(name, views.IsRequired(name, true), focusedField == name, false))
		}
		b.WriteString("\n")
		b.WriteString(m.renderButton(actionCreate, focusedAction == actionCreate))

	case views.TabEdit:
		b.WriteString(m.renderField(fieldIDInput, false, focusedField == fieldIDInput, false))
		b.WriteString(m.renderButton(actionLoad, focusedAction == actionLoad))
		if v := m.tabs.Edit(); v != nil {
			if _, ok := v.User(); ok {
				b.WriteString("\n\n")
				for _, name := range types.FormFields {
					readOnly := name == types.FieldUserID
					b.WriteString(m.renderField(name, views.IsRequired(name, false), focusedField == name, readOnly))
				}
				b.WriteString("\n")
				b.WriteString(m.renderButton(actionUpdate, focusedAction == actionUpdate))
			}
		}

	case views.TabDelete:
		b.WriteString(m.renderField(fieldIDInput, false, focusedField == fieldIDInput, false))
		b.WriteString(m.renderButton(actionLoad, focusedAction == actionLoad))
		if v := m.tabs.Delete(); v != nil {
			if s, ok := v.Summary(); ok {
				b.WriteString("\n\n")
				b.WriteString(renderSummary(s))
				b.WriteString("\n")
				b.WriteString(m.renderButton(actionDelete, focusedAction == actionDelete))
			}
		}
	}

	return b.String()
}

// renderField renders one labelled form row
func (m Model) renderField(name string, required, focused, readOnly bool) string {
	label := fieldLabels[name]
	if required {
		label += " *"
	}
	label = fmt.Sprintf("%-*s", FormLabelWidth, label)
	if focused {
		label = styleSelected.Render(label)
	} else {
		label = styleSubtle.Render(label)
	}

	var value string
	switch {
	case readOnly:
		value = styleSubtle.Render(m.form.Value(name) + " (read-only)")
	case m.form.Select(name) != nil:
		sel := m.form.Select(name)
		value = "< " + sel.Label() + " >"
		if focused {
			value = styleSelected.Render(value)
			if q := sel.Query(); q != "" {
				value += " " + styleWarning.Render("/"+q)
			}
		} else if sel.Value() == "" {
			value = styleSubtle.Render(value)
		}
	default:
		if ti := m.form.Input(name); ti != nil {
			value = ti.View()
		}
	}

	return label + " " + value + "\n"
}

// renderButton renders an action button with its in-flight label
func (m Model) renderButton(a actionKind, focused bool) string {
	label, inFlight := m.buttonLabel(a)
	if inFlight {
		return styleButton.Foreground(colorGray).Render(m.spinner.View() + " " + label)
	}
	if focused {
		return styleButtonFocused.Render(label)
	}
	return styleButton.Render(label)
}

func renderSummary(s views.Summary) string {
	rows := [][2]string{
		{"User ID", s.UserID},
		{"Name", s.Name},
		{"Email", s.Email},
		{"Role", s.Role},
		{"Organizations", s.Organizations},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("%-*s", FormLabelWidth, r[0])))
		b.WriteString(" ")
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return b.String()
}

// renderStatusBar renders the footer: messages on the right, hints otherwise
func (m Model) renderStatusBar() string {
	left := m.tabs.Active().String()

	right := ""
	if m.errorMsg != "" {
		right = styleError.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		right = styleSuccess.Render(m.statusMsg)
	} else {
		right = styleSubtle.Render(m.keyHints())
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// keyHints is the footer summary of the main bindings
func (m Model) keyHints() string {
	hints := []struct {
		context keybinds.Context
		action  keybinds.Action
		label   string
	}{
		{keybinds.ContextForm, keybinds.ActionNextField, "next field"},
		{keybinds.ContextForm, keybinds.ActionNextTab, "tab"},
		{keybinds.ContextForm, keybinds.ActionSubmit, "submit"},
		{keybinds.ContextForm, keybinds.ActionOpenHistory, "log"},
		{keybinds.ContextForm, keybinds.ActionOpenHelp, "help"},
		{keybinds.ContextGlobal, keybinds.ActionQuitForce, "quit"},
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		keys := m.keys.GetBinding(h.context, h.action)
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, keys[0]+": "+h.label)
	}
	return strings.Join(parts, " | ")
}
