package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrSelectionCancelled is returned when the picker is closed without a choice
var ErrSelectionCancelled = errors.New("selection cancelled")

const (
	pickerWidth  = 50
	pickerHeight = 10
)

var (
	pickerTitle   = lipgloss.NewStyle().Bold(true).MarginLeft(1)
	pickerRow     = lipgloss.NewStyle().PaddingLeft(3)
	pickerCurrent = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("12")).Bold(true)
	pickerHint    = lipgloss.NewStyle().Faint(true).MarginLeft(1)
)

// option is one role or organization in the picker
type option string

func (o option) FilterValue() string { return string(o) }

// optionPicker asks for a value of a select field (role, organization) when
// neither a flag nor the payload file supplied one
type optionPicker struct {
	list      list.Model
	picked    string
	cancelled bool
}

func newOptionPicker(field string, options []string) optionPicker {
	items := make([]list.Item, len(options))
	for i, o := range options {
		items[i] = option(o)
	}

	l := list.New(items, optionRow{}, pickerWidth, pickerHeight)
	l.Title = field
	l.Styles.Title = pickerTitle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return optionPicker{list: l}
}

func (p optionPicker) Init() tea.Cmd { return nil }

func (p optionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && p.list.FilterState() != list.Filtering {
		switch key.String() {
		case "esc", "ctrl+c":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			if o, ok := p.list.SelectedItem().(option); ok {
				p.picked = string(o)
			}
			return p, tea.Quit
		}
	}
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.list.SetWidth(min(size.Width, pickerWidth))
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p optionPicker) View() string {
	if p.picked != "" || p.cancelled {
		return ""
	}
	return p.list.View() + "\n" + pickerHint.Render("enter: pick | /: filter | esc: cancel")
}

// promptForOption runs the picker on stderr so stdout stays machine-readable
func promptForOption(field string, options []string) (string, error) {
	final, err := tea.NewProgram(newOptionPicker(field, options), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("pick %s: %w", field, err)
	}
	p := final.(optionPicker)
	if p.picked == "" {
		return "", ErrSelectionCancelled
	}
	return p.picked, nil
}

type optionRow struct{}

func (optionRow) Height() int                             { return 1 }
func (optionRow) Spacing() int                            { return 0 }
func (optionRow) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (optionRow) Render(w io.Writer, m list.Model, index int, item list.Item) {
	o, ok := item.(option)
	if !ok {
		return
	}
	if index == m.Index() {
		fmt.Fprint(w, pickerCurrent.Render("> "+string(o)))
		return
	}
	fmt.Fprint(w, pickerRow.Render(string(o)))
}
