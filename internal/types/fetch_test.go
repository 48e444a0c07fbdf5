package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFetchResult_Kind(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FetchKind
	}{
		{"bare record", `{"username":"alice"}`, FetchRaw},
		{"data object", `{"event":"e","data":{"user_id":"u1"}}`, FetchEnveloped},
		{"data null", `{"username":"alice","data":null}`, FetchRaw},
		{"data false", `{"username":"alice","data":false}`, FetchRaw},
		{"data zero", `{"username":"alice","data":0}`, FetchRaw},
		{"data empty string", `{"username":"alice","data":""}`, FetchRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseFetchResult([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind)
		})
	}
}

func TestParseFetchResult_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[]`, `"alice"`, `42`, `not json`} {
		_, err := ParseFetchResult([]byte(body))
		assert.Error(t, err, body)
	}

	// a truthy data member that is not an object is still an envelope
	for _, body := range []string{`{"event":"e","data":"x"}`, `{"event":"e","data":[1]}`, `{"data":true}`} {
		res, err := ParseFetchResult([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, FetchEnveloped, res.Kind, body)
		assert.Equal(t, UserRecord{}, res.Envelope.Data, body)
	}
}

func TestParseFetchResult_NonStringScalars(t *testing.T) {
	res, err := ParseFetchResult([]byte(`{"user_id":42,"username":"alice","phone_number":5551234,"role":null,"organizations":[{"org_id":7,"role":"staff"}]}`))
	require.NoError(t, err)
	assert.Equal(t, FetchRaw, res.Kind)
	assert.Equal(t, "42", res.Record.UserID)
	assert.Equal(t, "alice", res.Record.Username)
	assert.Equal(t, "5551234", res.Record.PhoneNumber)
	assert.Equal(t, "", res.Record.Role)
	assert.Equal(t, []string{"7"}, res.Record.OrgIDs())

	res, err = ParseFetchResult([]byte(`{"event":"user.fetched","timestamp":"t","data":{"user_id":42,"email":true}}`))
	require.NoError(t, err)
	assert.Equal(t, FetchEnveloped, res.Kind)
	assert.Equal(t, "42", res.Envelope.Data.UserID)
	assert.Equal(t, "true", res.Envelope.Data.Email)
}

func TestNormalize_RawRecordIsWrapped(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 30, 0, 123_000_000, time.UTC)
	res, err := ParseFetchResult([]byte(`{"username":"alice","email":"a@x.io","role":"nurse"}`))
	require.NoError(t, err)

	env := Normalize(res, now)

	assert.Equal(t, EventUserFetched, env.Event)
	assert.Equal(t, "2026-10-19T08:30:00.123Z", env.Timestamp)
	assert.Equal(t, res.Record, env.Data)
	// the raw body has no user_id, so the envelope has none either
	assert.Equal(t, "", env.Data.UserID)
}

func TestNormalize_EnvelopePassesThrough(t *testing.T) {
	body := `{"event":"user.created","timestamp":"2020-01-01T00:00:00.000Z","data":{"user_id":"u42","organizations":[{"org_id":"org1","role":"staff"}]}}`
	res, err := ParseFetchResult([]byte(body))
	require.NoError(t, err)

	env := Normalize(res, time.Now())

	assert.Equal(t, "user.created", env.Event)
	assert.Equal(t, "2020-01-01T00:00:00.000Z", env.Timestamp)
	assert.Equal(t, "u42", env.Data.UserID)
	assert.Equal(t, []string{"org1"}, env.Data.OrgIDs())
}

func TestUserRecord_SetGet(t *testing.T) {
	var r UserRecord
	for _, f := range FormFields {
		require.NoError(t, r.Set(f, "v-"+f))
	}
	for _, f := range FormFields {
		got, err := r.Get(f)
		require.NoError(t, err)
		assert.Equal(t, "v-"+f, got)
	}

	assert.Error(t, r.Set("organizations", "x"))
	_, err := r.Get("nope")
	assert.Error(t, err)
}

func TestUserPayload_AlwaysWritesListsAndDropsSelector(t *testing.T) {
	p := PayloadEnvelope{
		Event: EventUserCreated,
		Data:  UserPayload{Organizations: []Organization{}, Facilities: []any{}},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var generic map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Contains(t, generic["data"], "organizations")
	assert.Contains(t, generic["data"], "facilities")
	assert.NotContains(t, generic["data"], "organization")
}

func TestEnvelope_CloneIsDeep(t *testing.T) {
	orig := Envelope{Data: UserRecord{Organizations: []Organization{{OrgID: "org1"}}}}
	cp := orig.Clone()
	cp.Data.Organizations[0].OrgID = "changed"
	assert.Equal(t, "org1", orig.Data.Organizations[0].OrgID)
}
