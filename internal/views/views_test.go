package views

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/usertabs/internal/types"
)

// fakeAPI records calls and returns canned results
type fakeAPI struct {
	mu sync.Mutex

	fetchResult types.FetchResult
	fetchErr    error
	writeResult json.RawMessage
	writeErr    error

	fetched []string
	created []types.PayloadEnvelope
	updated []types.PayloadEnvelope
	deleted []string
}

func (f *fakeAPI) FetchUser(_ context.Context, id string) (types.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, id)
	return f.fetchResult, f.fetchErr
}

func (f *fakeAPI) CreateUser(_ context.Context, p types.PayloadEnvelope) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return f.writeResult, f.writeErr
}

func (f *fakeAPI) UpdateUser(_ context.Context, _ string, p types.PayloadEnvelope) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, p)
	return f.writeResult, f.writeErr
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.writeResult, f.writeErr
}

// fakeNotifier records messages and answers confirmations with answer
type fakeNotifier struct {
	answer    bool
	notified  []string
	confirmed []string
}

func (n *fakeNotifier) Notify(msg string) { n.notified = append(n.notified, msg) }

func (n *fakeNotifier) Confirm(msg string) bool {
	n.confirmed = append(n.confirmed, msg)
	return n.answer
}

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newDeps(api *fakeAPI, n *fakeNotifier) Deps {
	return Deps{API: api, Notifier: n, Now: func() time.Time { return fixedNow }}
}

func fillCreate(t *testing.T, v *CreateView, org, role string) {
	t.Helper()
	fields := map[string]string{
		types.FieldUserID:       "u1",
		types.FieldUsername:     "alice",
		types.FieldEmail:        "alice@example.com",
		types.FieldPassword:     "secret",
		types.FieldFirstName:    "Alice",
		types.FieldLastName:     "Liddell",
		types.FieldPhoneNumber:  "555",
		types.FieldRole:         role,
		types.FieldOrganization: org,
	}
	for k, val := range fields {
		require.NoError(t, v.SetField(k, val))
	}
}

func TestCreateView_InitialState(t *testing.T) {
	v := NewCreateView(newDeps(&fakeAPI{}, &fakeNotifier{}))
	env := v.Envelope()

	assert.Equal(t, types.EventUserCreated, env.Event)
	assert.Equal(t, "2026-10-19T09:00:00.000Z", env.Timestamp)
	assert.Equal(t, types.UserRecord{}, env.Data)
	assert.False(t, v.Submitting())
	assert.Equal(t, "Submit", v.SubmitLabel())
}

func TestCreateView_SetFieldRefreshesTimestamp(t *testing.T) {
	now := fixedNow
	deps := Deps{API: &fakeAPI{}, Notifier: &fakeNotifier{}, Now: func() time.Time { return now }}
	v := NewCreateView(deps)

	now = now.Add(1500 * time.Millisecond)
	require.NoError(t, v.SetField(types.FieldUsername, "alice"))

	env := v.Envelope()
	assert.Equal(t, "alice", env.Data.Username)
	assert.Equal(t, "2026-10-19T09:00:01.500Z", env.Timestamp)
	assert.Error(t, v.SetField("facilities", "x"))
}

func TestCreateView_SubmitBuildsOrganizations(t *testing.T) {
	api := &fakeAPI{writeResult: json.RawMessage(`{"ok":true}`)}
	n := &fakeNotifier{}
	v := NewCreateView(newDeps(api, n))
	fillCreate(t, v, "org2", "nurse")

	require.NoError(t, v.Submit(context.Background()))

	require.Len(t, api.created, 1)
	sent := api.created[0]
	assert.Equal(t, types.EventUserCreated, sent.Event)
	assert.Equal(t, []types.Organization{{OrgID: "org2", Role: "nurse"}}, sent.Data.Organizations)
	assert.Equal(t, []any{}, sent.Data.Facilities)
	assert.Equal(t, "alice", sent.Data.Username)

	body, err := json.Marshal(sent)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"organizations":[{"org_id":"org2","role":"nurse"}]`)
	assert.Contains(t, string(body), `"facilities":[]`)
	assert.NotContains(t, string(body), `"organization":`)

	// form is reset, event kept
	env := v.Envelope()
	assert.Equal(t, types.UserRecord{}, env.Data)
	assert.Equal(t, types.EventUserCreated, env.Event)
	assert.Equal(t, []string{msgCreated}, n.notified)
	assert.False(t, v.Submitting())
}

func TestCreateView_SubmitFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{writeErr: errors.New("boom")}
	n := &fakeNotifier{}
	v := NewCreateView(newDeps(api, n))
	fillCreate(t, v, "org1", "doctor")
	before := v.Envelope()

	err := v.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, v.Envelope())
	assert.Equal(t, []string{msgCreateFailed}, n.notified)
	assert.False(t, v.Submitting())
}

func TestCreateView_MissingRequiredFieldsSendNothing(t *testing.T) {
	api := &fakeAPI{}
	n := &fakeNotifier{}
	v := NewCreateView(newDeps(api, n))
	require.NoError(t, v.SetField(types.FieldUsername, "alice"))

	err := v.Submit(context.Background())

	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Contains(t, mf.Fields, types.FieldPassword)
	assert.NotContains(t, mf.Fields, types.FieldPhoneNumber)
	assert.NotContains(t, mf.Fields, types.FieldUserID)
	assert.Empty(t, api.created)
	require.Len(t, n.notified, 1)
}

func TestCreateView_WhitespaceCountsAsFilled(t *testing.T) {
	api := &fakeAPI{}
	v := NewCreateView(newDeps(api, &fakeNotifier{}))
	fillCreate(t, v, "org1", "doctor")
	require.NoError(t, v.SetField(types.FieldFirstName, "  "))

	require.NoError(t, v.Submit(context.Background()))

	require.Len(t, api.created, 1)
	assert.Equal(t, "  ", api.created[0].Data.FirstName)
}

func TestEditView_LoadRawRecordWrapsIt(t *testing.T) {
	raw := types.UserRecord{Username: "alice", Email: "a@x.io"}
	api := &fakeAPI{fetchResult: types.FetchResult{Kind: types.FetchRaw, Record: raw}}
	v := NewEditView(newDeps(api, &fakeNotifier{}))
	v.SetIDInput("u42")

	require.NoError(t, v.Load(context.Background()))

	env, ok := v.User()
	require.True(t, ok)
	assert.Equal(t, types.EventUserFetched, env.Event)
	assert.Equal(t, "2026-10-19T09:00:00.000Z", env.Timestamp)
	assert.Equal(t, raw, env.Data)
	// the raw body carries no user_id: the read-only field shows empty, not "u42"
	assert.Equal(t, "", v.Field(types.FieldUserID))
	assert.Equal(t, []string{"u42"}, api.fetched)
}

func TestEditView_RawRecordWithoutIDCannotBeUpdated(t *testing.T) {
	api := &fakeAPI{fetchResult: types.FetchResult{Kind: types.FetchRaw, Record: types.UserRecord{Username: "alice"}}}
	n := &fakeNotifier{}
	v := NewEditView(newDeps(api, n))
	v.SetIDInput("u42")
	require.NoError(t, v.Load(context.Background()))

	err := v.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, []string{msgLoadBeforeEdit}, n.notified)
	assert.Empty(t, api.updated)
}

func TestEditView_LoadPreconditionAndFailure(t *testing.T) {
	api := &fakeAPI{fetchResult: types.FetchResult{Kind: types.FetchEnveloped, Envelope: types.Envelope{Data: types.UserRecord{UserID: "u1"}}}}
	n := &fakeNotifier{}
	v := NewEditView(newDeps(api, n))

	assert.ErrorIs(t, v.Load(context.Background()), ErrIDInputEmpty)
	assert.Empty(t, api.fetched)
	assert.Equal(t, []string{msgEnterID}, n.notified)

	v.SetIDInput("u1")
	require.NoError(t, v.Load(context.Background()))
	_, ok := v.User()
	require.True(t, ok)

	api.fetchErr = errors.New("404")
	require.Error(t, v.Load(context.Background()))
	_, ok = v.User()
	assert.False(t, ok, "load failure clears the record")
	assert.Equal(t, msgLoadFailed, n.notified[len(n.notified)-1])
	assert.False(t, v.Loading())
}

func loadedEditView(t *testing.T, api *fakeAPI, n *fakeNotifier, rec types.UserRecord) *EditView {
	t.Helper()
	api.fetchResult = types.FetchResult{Kind: types.FetchEnveloped, Envelope: types.Envelope{Event: "user.created", Data: rec}}
	v := NewEditView(newDeps(api, n))
	v.SetIDInput(rec.UserID)
	require.NoError(t, v.Load(context.Background()))
	return v
}

func TestEditView_UserIDIsReadOnly(t *testing.T) {
	api := &fakeAPI{}
	v := loadedEditView(t, api, &fakeNotifier{}, types.UserRecord{UserID: "u1"})

	assert.ErrorIs(t, v.SetField(types.FieldUserID, "u2"), ErrReadOnlyField)
	assert.Equal(t, "u1", v.Field(types.FieldUserID))
	require.NoError(t, v.SetField(types.FieldEmail, "new@x.io"))
	assert.Equal(t, "new@x.io", v.Field(types.FieldEmail))
}

func TestEditView_SetFieldBeforeLoad(t *testing.T) {
	v := NewEditView(newDeps(&fakeAPI{}, &fakeNotifier{}))
	assert.ErrorIs(t, v.SetField(types.FieldEmail, "x"), ErrNotLoaded)
}

func completeRecord() types.UserRecord {
	return types.UserRecord{
		UserID:       "u1",
		Username:     "alice",
		Email:        "a@x.io",
		FirstName:    "Alice",
		LastName:     "L",
		Role:         "staff",
		Organization: "org3",
	}
}

func TestEditView_PayloadPreservesExistingLists(t *testing.T) {
	rec := completeRecord()
	rec.Organizations = []types.Organization{{OrgID: "org1", Role: "doctor"}, {OrgID: "org2", Role: "staff"}}
	rec.Facilities = []any{"f1"}
	v := loadedEditView(t, &fakeAPI{}, &fakeNotifier{}, rec)

	p, err := v.BuildPayload()
	require.NoError(t, err)
	assert.Equal(t, types.EventUserUpdated, p.Event)
	assert.Equal(t, rec.Organizations, p.Data.Organizations)
	assert.Equal(t, []any{"f1"}, p.Data.Facilities)
}

func TestEditView_PayloadFallsBackToSelector(t *testing.T) {
	v := loadedEditView(t, &fakeAPI{}, &fakeNotifier{}, completeRecord())

	p, err := v.BuildPayload()
	require.NoError(t, err)
	assert.Equal(t, []types.Organization{{OrgID: "org3", Role: "staff"}}, p.Data.Organizations)
	assert.Equal(t, []any{}, p.Data.Facilities)
}

func TestEditView_SubmitUsesServerEnvelope(t *testing.T) {
	api := &fakeAPI{}
	n := &fakeNotifier{}
	v := loadedEditView(t, api, n, completeRecord())
	api.writeResult = json.RawMessage(`{"event":"user.updated","timestamp":"srv","data":{"user_id":"u1","username":"server-name"}}`)

	require.NoError(t, v.Submit(context.Background()))

	env, _ := v.User()
	assert.Equal(t, "srv", env.Timestamp)
	assert.Equal(t, "server-name", env.Data.Username)
	assert.Equal(t, []string{msgUpdated}, n.notified)
	require.Len(t, api.updated, 1)
}

func TestEditView_SubmitFallsBackToPayload(t *testing.T) {
	api := &fakeAPI{}
	v := loadedEditView(t, api, &fakeNotifier{}, completeRecord())
	api.writeResult = json.RawMessage(`{"ok":true}`)
	require.NoError(t, v.SetField(types.FieldUsername, "renamed"))

	require.NoError(t, v.Submit(context.Background()))

	env, _ := v.User()
	assert.Equal(t, types.EventUserUpdated, env.Event)
	assert.Equal(t, "renamed", env.Data.Username)
	assert.Equal(t, []types.Organization{{OrgID: "org3", Role: "staff"}}, env.Data.Organizations)
	// the payload has no selector, so neither does the new state
	assert.Equal(t, "", env.Data.Organization)
	assert.Equal(t, "", v.Field(types.FieldOrganization))
}

func TestEditView_SecondSubmitNeedsSelectorAgain(t *testing.T) {
	api := &fakeAPI{writeResult: json.RawMessage(`{"ok":true}`)}
	n := &fakeNotifier{}
	v := loadedEditView(t, api, n, completeRecord())
	require.NoError(t, v.Submit(context.Background()))

	err := v.Submit(context.Background())

	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{types.FieldOrganization}, mf.Fields)
	assert.Len(t, api.updated, 1)

	require.NoError(t, v.SetField(types.FieldOrganization, "org3"))
	require.NoError(t, v.Submit(context.Background()))
	assert.Len(t, api.updated, 2)
}

func TestEditView_LoadNumericUserID(t *testing.T) {
	res, err := types.ParseFetchResult([]byte(`{"user_id":42,"username":"alice"}`))
	require.NoError(t, err)
	api := &fakeAPI{fetchResult: res}
	v := NewEditView(newDeps(api, &fakeNotifier{}))
	v.SetIDInput("42")

	require.NoError(t, v.Load(context.Background()))

	assert.Equal(t, "42", v.Field(types.FieldUserID))
	assert.Equal(t, "alice", v.Field(types.FieldUsername))
}

func TestEditView_SubmitFailureKeepsState(t *testing.T) {
	api := &fakeAPI{}
	n := &fakeNotifier{}
	v := loadedEditView(t, api, n, completeRecord())
	before, _ := v.User()
	api.writeErr = errors.New("500")

	require.Error(t, v.Submit(context.Background()))

	after, _ := v.User()
	assert.Equal(t, before, after)
	assert.Equal(t, []string{msgUpdateFailed}, n.notified)
	assert.False(t, v.Saving())
}

func loadedDeleteView(t *testing.T, api *fakeAPI, n *fakeNotifier) *DeleteView {
	t.Helper()
	rec := completeRecord()
	rec.Organizations = []types.Organization{{OrgID: "org1"}, {OrgID: "org2"}}
	api.fetchResult = types.FetchResult{Kind: types.FetchEnveloped, Envelope: types.Envelope{Data: rec}}
	v := NewDeleteView(newDeps(api, n))
	v.SetIDInput("u1")
	require.NoError(t, v.Load(context.Background()))
	return v
}

func TestDeleteView_Summary(t *testing.T) {
	v := loadedDeleteView(t, &fakeAPI{}, &fakeNotifier{})

	s, ok := v.Summary()
	require.True(t, ok)
	assert.Equal(t, Summary{
		UserID:        "u1",
		Name:          "Alice L",
		Email:         "a@x.io",
		Role:          "staff",
		Organizations: "org1, org2",
	}, s)
}

func TestDeleteView_DeclineSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	n := &fakeNotifier{answer: false}
	v := loadedDeleteView(t, api, n)
	before, _ := v.User()

	assert.ErrorIs(t, v.Delete(context.Background()), ErrDeclined)

	assert.Empty(t, api.deleted)
	after, ok := v.User()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"Delete user u1? This action cannot be undone."}, n.confirmed)
	assert.Equal(t, "u1", v.IDInput())
}

func TestDeleteView_ConfirmedDeleteClearsState(t *testing.T) {
	api := &fakeAPI{writeResult: json.RawMessage(`{"success":true}`)}
	n := &fakeNotifier{answer: true}
	v := loadedDeleteView(t, api, n)

	require.NoError(t, v.Delete(context.Background()))

	assert.Equal(t, []string{"u1"}, api.deleted)
	_, ok := v.User()
	assert.False(t, ok)
	assert.Equal(t, "", v.IDInput())
	assert.Equal(t, []string{msgDeleted}, n.notified)
}

func TestDeleteView_FailureKeepsRecord(t *testing.T) {
	api := &fakeAPI{writeErr: errors.New("500")}
	n := &fakeNotifier{answer: true}
	v := loadedDeleteView(t, api, n)

	require.Error(t, v.Delete(context.Background()))

	_, ok := v.User()
	assert.True(t, ok)
	assert.Equal(t, "u1", v.IDInput())
	assert.Equal(t, []string{msgDeleteFailed}, n.notified)
	assert.False(t, v.Deleting())
}

func TestDeleteView_RequiresLoadedUser(t *testing.T) {
	api := &fakeAPI{}
	n := &fakeNotifier{answer: true}
	v := NewDeleteView(newDeps(api, n))

	assert.ErrorIs(t, v.Delete(context.Background()), ErrNotLoaded)
	assert.Empty(t, n.confirmed)
	assert.Empty(t, api.deleted)
	assert.Equal(t, []string{msgLoadFirst}, n.notified)
}

func TestTabs_DefaultAndSwitchDiscardsState(t *testing.T) {
	tabs := NewTabs(newDeps(&fakeAPI{}, &fakeNotifier{}))

	assert.Equal(t, TabCreate, tabs.Active())
	require.NotNil(t, tabs.Create())
	assert.Nil(t, tabs.Edit())
	assert.Nil(t, tabs.Delete())

	require.NoError(t, tabs.Create().SetField(types.FieldUsername, "alice"))

	// reselecting the active tab keeps its state
	tabs.Select(TabCreate)
	assert.Equal(t, "alice", tabs.Create().Field(types.FieldUsername))

	tabs.Select(TabEdit)
	assert.Equal(t, TabEdit, tabs.Active())
	assert.Nil(t, tabs.Create())
	tabs.Edit().SetIDInput("u1")

	tabs.Select(TabCreate)
	assert.Equal(t, "", tabs.Create().Field(types.FieldUsername))

	tabs.Select(TabEdit)
	assert.Equal(t, "", tabs.Edit().IDInput())
}

func TestTabs_NextPrevWrap(t *testing.T) {
	tabs := NewTabs(newDeps(&fakeAPI{}, &fakeNotifier{}))

	tabs.Next()
	assert.Equal(t, TabEdit, tabs.Active())
	tabs.Next()
	assert.Equal(t, TabDelete, tabs.Active())
	tabs.Next()
	assert.Equal(t, TabCreate, tabs.Active())
	tabs.Prev()
	assert.Equal(t, TabDelete, tabs.Active())
	assert.Equal(t, "Delete User", tabs.Active().String())
}

func TestIsRequired(t *testing.T) {
	assert.True(t, IsRequired(types.FieldPassword, true))
	assert.False(t, IsRequired(types.FieldPassword, false))
	assert.True(t, IsRequired(types.FieldOrganization, false))
	assert.False(t, IsRequired(types.FieldPhoneNumber, true))
}
