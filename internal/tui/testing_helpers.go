package tui

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/usertabs/internal/logging"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
)

// stubAPI is an in-memory views.UserAPI for model tests
type stubAPI struct {
	mu sync.Mutex

	fetchResult types.FetchResult
	fetchErr    error
	writeErr    error

	fetched []string
	created []types.PayloadEnvelope
	updated []types.PayloadEnvelope
	deleted []string
}

func (s *stubAPI) FetchUser(_ context.Context, id string) (types.FetchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, id)
	return s.fetchResult, s.fetchErr
}

func (s *stubAPI) CreateUser(_ context.Context, p types.PayloadEnvelope) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, p)
	return json.RawMessage(`{"ok":true}`), s.writeErr
}

func (s *stubAPI) UpdateUser(_ context.Context, _ string, p types.PayloadEnvelope) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, p)
	return json.RawMessage(`{"ok":true}`), s.writeErr
}

func (s *stubAPI) DeleteUser(_ context.Context, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return json.RawMessage(`{"ok":true}`), s.writeErr
}

// testModel drives a Model without a running program. Notifier messages are
// queued and delivered after the command that produced them finishes.
type testModel struct {
	*Model

	mu      sync.Mutex
	pending []tea.Msg
	answer  bool
	asked   []string
}

// CreateTestModel creates a Model with animations off and a fixed clock.
// Confirmations are answered with answer.
func CreateTestModel(t *testing.T, api views.UserAPI, answer bool) *testModel {
	t.Helper()

	notifier := NewNotifier()
	t.Cleanup(notifier.Close)

	m := New(Options{
		API:      api,
		Notifier: notifier,
		Logger:   logging.Discard(),
		BaseURL:  "http://test.local/webhook/employee/",
		Now: func() time.Time {
			return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		},
	})
	m.animate = false
	m.resetForm()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	tm := &testModel{Model: m, answer: answer}
	notifier.Attach(func(msg tea.Msg) {
		tm.mu.Lock()
		defer tm.mu.Unlock()
		if c, ok := msg.(confirmMsg); ok {
			tm.asked = append(tm.asked, c.text)
			c.reply <- tm.answer
			return
		}
		tm.pending = append(tm.pending, msg)
	})

	return tm
}

// run executes cmd and every command it produces, feeding the resulting
// messages into the model, then delivers queued notifier messages
func (tm *testModel) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		_, next := tm.Update(msg)
		queue = append(queue, next)
	}

	tm.mu.Lock()
	pending := tm.pending
	tm.pending = nil
	tm.mu.Unlock()
	for _, msg := range pending {
		tm.Update(msg)
	}
}

// press sends a key to the model and runs whatever it triggers
func (tm *testModel) press(t *testing.T, key string) {
	t.Helper()
	_, cmd := tm.Update(keyMsg(key))
	if key == "ctrl+c" {
		return
	}
	tm.run(t, cmd)
}

// typeText types each rune of s into the focused control
func (tm *testModel) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		_, cmd := tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		tm.run(t, cmd)
	}
}

// focusField moves focus to the control editing field
func (tm *testModel) focusField(t *testing.T, field string) {
	t.Helper()
	for i, c := range tm.controls() {
		if c.kind != controlButton && c.field == field {
			tm.form.SetFocus(i, tm.controls())
			return
		}
	}
	t.Fatalf("no control for field %q", field)
}

// focusAction moves focus to the button running action
func (tm *testModel) focusAction(t *testing.T, action actionKind) {
	t.Helper()
	for i, c := range tm.controls() {
		if c.kind == controlButton && c.action == action {
			tm.form.SetFocus(i, tm.controls())
			return
		}
	}
	t.Fatalf("no button for action %s", actionName(action))
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// AssertModelField checks a model value against its expected value
func AssertModelField[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
