package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/usertabs/internal/keybinds"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
)

func loadedUser() types.FetchResult {
	return types.FetchResult{
		Kind: types.FetchEnveloped,
		Envelope: types.Envelope{
			Event:     "user.created",
			Timestamp: "2026-10-01T08:00:00.000Z",
			Data: types.UserRecord{
				UserID:       "u1",
				Username:     "alice",
				Email:        "alice@example.com",
				FirstName:    "Alice",
				LastName:     "Smith",
				Role:         "doctor",
				Organization: "org1",
				Organizations: []types.Organization{
					{OrgID: "org1", Role: "doctor"},
				},
			},
		},
	}
}

func TestNewModelStartsOnCreate(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	AssertModelField(t, "ActiveTab", m.ActiveTab(), views.TabCreate)
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "focus", m.form.GetFocus(), 0)

	if got := len(m.controls()); got != len(types.FormFields)+1 {
		t.Errorf("create controls = %d, want %d", got, len(types.FormFields)+1)
	}
}

func TestTabSwitching(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	m.press(t, "ctrl+n")
	AssertModelField(t, "after ctrl+n", m.ActiveTab(), views.TabEdit)

	m.press(t, "ctrl+n")
	AssertModelField(t, "after second ctrl+n", m.ActiveTab(), views.TabDelete)

	m.press(t, "ctrl+n")
	AssertModelField(t, "wrap to create", m.ActiveTab(), views.TabCreate)

	m.press(t, "ctrl+p")
	AssertModelField(t, "ctrl+p wraps back", m.ActiveTab(), views.TabDelete)
}

func TestTabSwitchDiscardsFormState(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	m.focusField(t, types.FieldUsername)
	m.typeText(t, "alice")
	if got := m.tabs.Create().Field(types.FieldUsername); got != "alice" {
		t.Fatalf("username = %q, want alice", got)
	}

	m.press(t, "ctrl+n")
	m.press(t, "ctrl+p")

	if got := m.tabs.Create().Field(types.FieldUsername); got != "" {
		t.Errorf("username after tab round trip = %q, want empty", got)
	}
	if got := m.form.Value(types.FieldUsername); got != "" {
		t.Errorf("widget after tab round trip = %q, want empty", got)
	}
}

func TestButtonKeysSelectTab(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)
	m.focusAction(t, actionCreate)

	m.press(t, "3")
	AssertModelField(t, "tab", m.ActiveTab(), views.TabDelete)
}

func TestFocusWraps(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)
	n := len(m.controls())

	m.press(t, "shift+tab")
	AssertModelField(t, "focus after shift+tab", m.form.GetFocus(), n-1)

	m.press(t, "tab")
	AssertModelField(t, "focus after tab", m.form.GetFocus(), 0)
}

func fillCreateForm(t *testing.T, m *testModel) {
	t.Helper()
	fields := map[string]string{
		types.FieldUserID:    "u9",
		types.FieldUsername:  "bob",
		types.FieldEmail:     "bob@example.com",
		types.FieldPassword:  "s3cret",
		types.FieldFirstName: "Bob",
		types.FieldLastName:  "Jones",
	}
	for name, value := range fields {
		m.focusField(t, name)
		m.typeText(t, value)
	}

	m.focusField(t, types.FieldRole)
	m.typeText(t, "nur")
	m.focusField(t, types.FieldOrganization)
	m.press(t, "right")
	m.press(t, "right")
}

func TestCreateSubmit(t *testing.T) {
	api := &stubAPI{}
	m := CreateTestModel(t, api, true)

	fillCreateForm(t, m)
	m.press(t, "ctrl+s")

	if len(api.created) != 1 {
		t.Fatalf("created = %d, want 1", len(api.created))
	}
	p := api.created[0]
	AssertModelField(t, "event", p.Event, types.EventUserCreated)
	AssertModelField(t, "username", p.Data.Username, "bob")
	AssertModelField(t, "role", p.Data.Role, "nurse")
	if len(p.Data.Organizations) != 1 || p.Data.Organizations[0].OrgID != "org2" {
		t.Errorf("organizations = %+v, want org2", p.Data.Organizations)
	}

	// form resets on success
	if got := m.form.Value(types.FieldUsername); got != "" {
		t.Errorf("username widget after create = %q, want empty", got)
	}
	if got := m.form.Value(types.FieldRole); got != "" {
		t.Errorf("role widget after create = %q, want empty", got)
	}
	AssertModelField(t, "focus", m.form.GetFocus(), 0)
	AssertModelField(t, "statusMsg", m.statusMsg, "User created")

	AssertModelField(t, "mode", m.mode, ModeNotify)
	if len(m.notices) != 1 || m.notices[0] != "User created successfully!" {
		t.Errorf("notices = %v", m.notices)
	}

	m.press(t, "enter")
	AssertModelField(t, "mode after dismiss", m.mode, ModeNormal)
}

func TestCreateMissingFieldsNotifies(t *testing.T) {
	api := &stubAPI{}
	m := CreateTestModel(t, api, true)

	m.focusField(t, types.FieldUsername)
	m.typeText(t, "bob")
	m.press(t, "ctrl+s")

	if len(api.created) != 0 {
		t.Errorf("created = %d, want 0", len(api.created))
	}
	AssertModelField(t, "mode", m.mode, ModeNotify)
	if len(m.notices) == 0 || !strings.Contains(m.notices[0], "email") {
		t.Errorf("notices = %v, want missing email", m.notices)
	}
	if got := m.form.Value(types.FieldUsername); got != "bob" {
		t.Errorf("username kept = %q, want bob", got)
	}
}

func TestCreateFailureKeepsForm(t *testing.T) {
	api := &stubAPI{writeErr: errors.New("boom")}
	m := CreateTestModel(t, api, true)

	fillCreateForm(t, m)
	m.press(t, "ctrl+s")

	if got := m.form.Value(types.FieldUsername); got != "bob" {
		t.Errorf("username after failure = %q, want bob", got)
	}
	if !strings.Contains(m.errorMsg, "create failed") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestEditLoadAndUpdate(t *testing.T) {
	api := &stubAPI{fetchResult: loadedUser()}
	m := CreateTestModel(t, api, true)
	m.press(t, "ctrl+n")

	m.typeText(t, "u1")
	m.press(t, "enter")

	if len(api.fetched) != 1 || api.fetched[0] != "u1" {
		t.Fatalf("fetched = %v, want [u1]", api.fetched)
	}
	AssertModelField(t, "username widget", m.form.Value(types.FieldUsername), "alice")
	AssertModelField(t, "role widget", m.form.Value(types.FieldRole), "doctor")

	c, ok := m.form.Focused(m.controls())
	if !ok || c.field != types.FieldUsername {
		t.Errorf("focused after load = %+v, want username", c)
	}
	for _, c := range m.controls() {
		if c.field == types.FieldUserID {
			t.Error("user_id must not be editable after load")
		}
	}

	m.press(t, "ctrl+k")
	m.typeText(t, "alicia")
	m.press(t, "ctrl+s")

	if len(api.updated) != 1 {
		t.Fatalf("updated = %d, want 1", len(api.updated))
	}
	p := api.updated[0]
	AssertModelField(t, "event", p.Event, types.EventUserUpdated)
	AssertModelField(t, "username", p.Data.Username, "alicia")
	AssertModelField(t, "user_id", p.Data.UserID, "u1")
	AssertModelField(t, "statusMsg", m.statusMsg, "User updated")
	AssertModelField(t, "username after update", m.form.Value(types.FieldUsername), "alicia")
}

func TestEditEnterWithoutIDNotifies(t *testing.T) {
	api := &stubAPI{fetchResult: loadedUser()}
	m := CreateTestModel(t, api, true)
	m.press(t, "ctrl+n")

	m.press(t, "enter")

	if len(api.fetched) != 0 {
		t.Errorf("fetched = %v, want none", api.fetched)
	}
	if len(m.notices) != 1 || m.notices[0] != "Enter user_id to load" {
		t.Errorf("notices = %v", m.notices)
	}
}

func TestEditLoadFailure(t *testing.T) {
	api := &stubAPI{fetchErr: errors.New("404")}
	m := CreateTestModel(t, api, true)
	m.press(t, "ctrl+n")

	m.typeText(t, "missing")
	m.press(t, "enter")

	if _, ok := m.tabs.Edit().User(); ok {
		t.Error("no user should be loaded after a failed fetch")
	}
	if got := len(m.controls()); got != 2 {
		t.Errorf("controls after failed load = %d, want 2", got)
	}
	if !strings.Contains(m.errorMsg, "load failed") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestDeleteConfirmed(t *testing.T) {
	api := &stubAPI{fetchResult: loadedUser()}
	m := CreateTestModel(t, api, true)
	m.press(t, "ctrl+n")
	m.press(t, "ctrl+n")
	AssertModelField(t, "tab", m.ActiveTab(), views.TabDelete)

	m.typeText(t, "u1")
	m.press(t, "enter")

	s, ok := m.tabs.Delete().Summary()
	if !ok {
		t.Fatal("summary missing after load")
	}
	AssertModelField(t, "summary name", s.Name, "Alice Smith")

	m.focusAction(t, actionDelete)
	m.press(t, "enter")

	if len(m.asked) != 1 || !strings.Contains(m.asked[0], "u1") {
		t.Errorf("confirmations = %v", m.asked)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "u1" {
		t.Fatalf("deleted = %v, want [u1]", api.deleted)
	}
	if _, ok := m.tabs.Delete().User(); ok {
		t.Error("user should be cleared after delete")
	}
	AssertModelField(t, "id widget", m.form.Value(fieldIDInput), "")
	AssertModelField(t, "statusMsg", m.statusMsg, "User deleted")
}

func TestDeleteDeclined(t *testing.T) {
	api := &stubAPI{fetchResult: loadedUser()}
	m := CreateTestModel(t, api, false)
	m.switchTab(views.TabDelete)

	m.typeText(t, "u1")
	m.press(t, "enter")
	m.press(t, "ctrl+s")

	if len(api.deleted) != 0 {
		t.Errorf("deleted = %v, want none", api.deleted)
	}
	if _, ok := m.tabs.Delete().User(); !ok {
		t.Error("user should stay loaded after declining")
	}
	AssertModelField(t, "statusMsg", m.statusMsg, "Delete cancelled")
}

func TestStaleResultIgnored(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)
	m.switchTab(views.TabEdit)
	stale := m.gen

	m.switchTab(views.TabDelete)
	m.Update(actionDoneMsg{gen: stale, action: actionLoad, err: errors.New("late")})

	AssertModelField(t, "errorMsg", m.errorMsg, "")
	AssertModelField(t, "tab", m.ActiveTab(), views.TabDelete)
}

func TestConfirmModal(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	reply := make(chan bool, 1)
	m.Update(confirmMsg{text: "Delete user u1?", reply: reply})
	AssertModelField(t, "mode", m.mode, ModeConfirm)

	if !strings.Contains(m.View(), "Delete user u1?") {
		t.Error("confirm text not rendered")
	}

	// a second question while one is open is declined
	second := make(chan bool, 1)
	m.Update(confirmMsg{text: "again?", reply: second})
	if <-second {
		t.Error("second confirmation should be declined")
	}

	m.press(t, "x")
	AssertModelField(t, "mode after unrelated key", m.mode, ModeConfirm)

	m.press(t, "y")
	if !<-reply {
		t.Error("answer = false, want true")
	}
	AssertModelField(t, "mode after answer", m.mode, ModeNormal)
}

func TestNoticesQueue(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	m.Update(notifyMsg{text: "first"})
	m.Update(notifyMsg{text: "second"})

	view := m.View()
	if !strings.Contains(view, "first") || !strings.Contains(view, "1 more") {
		t.Errorf("notice view missing content:\n%s", view)
	}

	m.press(t, "enter")
	AssertModelField(t, "mode", m.mode, ModeNotify)
	m.press(t, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestCleanupDeclinesPendingConfirm(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	reply := make(chan bool, 1)
	m.Update(confirmMsg{text: "Delete?", reply: reply})
	m.press(t, "ctrl+c")

	if <-reply {
		t.Error("pending confirmation should answer no on quit")
	}
}

func TestHistoryModalWithoutManager(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	m.press(t, "ctrl+l")
	AssertModelField(t, "mode", m.mode, ModeHistory)
	if !strings.Contains(m.historyErr, "disabled") {
		t.Errorf("historyErr = %q", m.historyErr)
	}

	m.press(t, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestHistoryModalRendersRecords(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)
	m.mode = ModeHistory

	m.Update(historyLoadedMsg{records: []types.CallRecord{
		{Operation: "fetch", UserID: "u1", Status: 200, Duration: 12},
		{Operation: "delete", UserID: "u2", Status: 500, Error: "server error"},
	}})

	view := m.View()
	for _, want := range []string{"Request Log", "fetch", "u2", "server error"} {
		if !strings.Contains(view, want) {
			t.Errorf("history view missing %q", want)
		}
	}
}

func TestHelpModal(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{}, true)

	m.press(t, "f1")
	AssertModelField(t, "mode", m.mode, ModeHelp)
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help not rendered")
	}

	m.press(t, "q")
	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestRenderMain(t *testing.T) {
	m := CreateTestModel(t, &stubAPI{fetchResult: loadedUser()}, true)

	view := m.View()
	for _, want := range []string{"Create User", "Edit User", "Delete User", "Username *", "-- Select Role --", "Submit"} {
		if !strings.Contains(view, want) {
			t.Errorf("create view missing %q", want)
		}
	}

	m.switchTab(views.TabEdit)
	m.typeText(t, "u1")
	m.press(t, "enter")

	view = m.View()
	if !strings.Contains(view, "(read-only)") {
		t.Error("edit view should show user_id as read-only")
	}
	if !strings.Contains(view, "Update User") {
		t.Error("edit view missing update button")
	}
}

func TestCustomKeybinds(t *testing.T) {
	keys, _, err := keybinds.Load(keybinds.Config{
		"form": {"open_history": {"ctrl+o"}},
	})
	if err != nil {
		t.Fatalf("keybinds.Load: %v", err)
	}

	m := CreateTestModel(t, &stubAPI{}, true)
	m.keys = keys

	m.press(t, "ctrl+l")
	AssertModelField(t, "mode after old key", m.mode, ModeNormal)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m.run(t, cmd)
	AssertModelField(t, "mode after new key", m.mode, ModeHistory)

	m.press(t, "esc")
	if !strings.Contains(m.View(), "ctrl+o: log") {
		t.Error("footer should show the rebound key")
	}
}
