package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FetchKind tells whether a server body was already an envelope
type FetchKind int

const (
	// FetchRaw is a bare user object without a "data" wrapper
	FetchRaw FetchKind = iota
	// FetchEnveloped is an object carrying a truthy "data" member
	FetchEnveloped
)

func (k FetchKind) String() string {
	if k == FetchEnveloped {
		return "enveloped"
	}
	return "raw"
}

// FetchResult is a decoded server body: either a raw record or an envelope.
// Only the member matching Kind is meaningful.
type FetchResult struct {
	Kind     FetchKind
	Record   UserRecord
	Envelope Envelope
}

// ParseFetchResult decodes a JSON body into a FetchResult.
// The body must be a JSON object. It counts as enveloped when "data" is
// present and not one of null, false, 0 or "". A truthy "data" that is not an
// object ("x", [1], true) still makes an envelope, with an empty record.
func ParseFetchResult(body []byte) (FetchResult, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return FetchResult{}, fmt.Errorf("response is not a JSON object: %w", err)
	}

	if data, ok := members["data"]; ok && isTruthy(data) {
		env, err := decodeEnvelope(members, data)
		if err != nil {
			return FetchResult{}, fmt.Errorf("failed to decode envelope: %w", err)
		}
		return FetchResult{Kind: FetchEnveloped, Envelope: env}, nil
	}

	var rec UserRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return FetchResult{}, fmt.Errorf("failed to decode user record: %w", err)
	}
	return FetchResult{Kind: FetchRaw, Record: rec}, nil
}

// Normalize turns a FetchResult into an envelope. Enveloped results pass
// through; raw records become the data of a "user.fetched" envelope stamped
// with now. The raw record is used as-is, so a body without user_id yields an
// envelope with an empty user_id.
func Normalize(r FetchResult, now time.Time) Envelope {
	if r.Kind == FetchEnveloped {
		return r.Envelope.Clone()
	}
	return Envelope{
		Event:     EventUserFetched,
		Timestamp: FormatTimestamp(now),
		Data:      r.Record.Clone(),
	}
}

func isTruthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", `""`:
		return false
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n != 0
	}
	return true
}

func decodeEnvelope(members map[string]json.RawMessage, data json.RawMessage) (Envelope, error) {
	var event, timestamp looseString
	if raw, ok := members["event"]; ok {
		if err := json.Unmarshal(raw, &event); err != nil {
			return Envelope{}, err
		}
	}
	if raw, ok := members["timestamp"]; ok {
		if err := json.Unmarshal(raw, &timestamp); err != nil {
			return Envelope{}, err
		}
	}

	env := Envelope{Event: string(event), Timestamp: string(timestamp)}
	if d := bytes.TrimSpace(data); len(d) > 0 && d[0] == '{' {
		if err := json.Unmarshal(d, &env.Data); err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}
