package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/keybinds"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeNotify
	ModeConfirm
	ModeHistory
	ModeHelp
)

// Options configures a new Model
type Options struct {
	API           views.UserAPI
	History       *history.Manager
	Logger        *slog.Logger
	Notifier      *Notifier
	Roles         []string
	Organizations []string
	BaseURL       string
	Keybinds      *keybinds.Registry
	Now           func() time.Time
}

// Model represents the TUI state
type Model struct {
	// Core state
	tabs           *views.Tabs
	notifier       *Notifier
	historyManager *history.Manager
	logger         *slog.Logger
	mode           Mode
	baseURL        string
	keys           *keybinds.Registry

	roles         []string
	organizations []string

	// Form of the active tab
	form *FormState
	gen  int // bumped on every tab switch so late results of a discarded view are ignored

	// Notifications and confirmation
	notices []string
	confirm *confirmMsg

	// Request log modal
	historyView    viewport.Model
	historyRecords []types.CallRecord
	historyErr     string

	// In-flight indicator
	spinner  spinner.Model
	spinning bool
	animate  bool

	// UI state
	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// actionDoneMsg reports the end of a view action
type actionDoneMsg struct {
	gen    int
	action actionKind
	err    error
}

// historyLoadedMsg carries the request log for the modal
type historyLoadedMsg struct {
	records []types.CallRecord
	err     error
}

type clearStatusMsg struct{}

// New creates a new TUI model starting on the create tab
func New(opts Options) *Model {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	roles := opts.Roles
	if len(roles) == 0 {
		roles = types.DefaultRoles
	}
	orgs := opts.Organizations
	if len(orgs) == 0 {
		orgs = types.DefaultOrganizations
	}
	keys := opts.Keybinds
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleWarning

	m := &Model{
		tabs: views.NewTabs(views.Deps{
			API:      opts.API,
			Notifier: notifier,
			Logger:   logger,
			Now:      opts.Now,
		}),
		notifier:       notifier,
		historyManager: opts.History,
		logger:         logger,
		mode:           ModeNormal,
		baseURL:        opts.BaseURL,
		keys:           keys,
		roles:          roles,
		organizations:  orgs,
		historyView:    viewport.New(80, 20),
		spinner:        sp,
		animate:        true,
	}
	m.resetForm()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Cleanup releases anything waiting on the operator
func (m *Model) Cleanup() {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	m.notifier.Close()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateHistoryViewSize()

	case notifyMsg:
		m.notices = append(m.notices, msg.text)
		if m.mode != ModeConfirm {
			m.mode = ModeNotify
		}

	case confirmMsg:
		if m.confirm != nil {
			// one question at a time; a second one is declined
			msg.reply <- false
			break
		}
		c := msg
		m.confirm = &c
		m.mode = ModeConfirm

	case actionDoneMsg:
		cmd = m.handleActionDone(msg)

	case historyLoadedMsg:
		m.historyRecords = msg.records
		m.historyErr = ""
		if msg.err != nil {
			m.historyErr = msg.err.Error()
		}
		m.updateHistoryView()

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			break
		}
		m.spinner, cmd = m.spinner.Update(msg)

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""
	}

	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeNotify:
		return m.renderNotify()
	case ModeConfirm:
		return m.renderConfirm()
	case ModeHistory:
		return m.renderHistory()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// ActiveTab returns the selected tab
func (m *Model) ActiveTab() views.Tab {
	return m.tabs.Active()
}

// busy reports whether the active view has a request in flight
func (m *Model) busy() bool {
	switch m.tabs.Active() {
	case views.TabCreate:
		if v := m.tabs.Create(); v != nil {
			return v.Submitting()
		}
	case views.TabEdit:
		if v := m.tabs.Edit(); v != nil {
			return v.Loading() || v.Saving()
		}
	case views.TabDelete:
		if v := m.tabs.Delete(); v != nil {
			return v.Loading() || v.Deleting()
		}
	}
	return false
}

func (m *Model) startSpinner() tea.Cmd {
	if !m.animate || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// setStatusMessage shows msg in the footer, truncated, and clears it later
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.statusMsg = truncate(msg, StatusMaxLength)
	return m.clearStatusLater()
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = truncate(msg, StatusMaxLength)
	return m.clearStatusLater()
}

func (m *Model) clearStatusLater() tea.Cmd {
	if !m.animate {
		return nil
	}
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
