package types

import (
	"bytes"
	"encoding/json"
)

// looseString decodes any JSON value into text. Strings are unquoted, null is
// empty, and numbers, booleans, objects and arrays keep their JSON text, so
// {"user_id":42} loads as "42".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*s = looseString(buf.String())
	}
	return nil
}

// UnmarshalJSON accepts non-string scalars for every text field
func (o *Organization) UnmarshalJSON(b []byte) error {
	var wire struct {
		OrgID looseString `json:"org_id"`
		Role  looseString `json:"role"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*o = Organization{OrgID: string(wire.OrgID), Role: string(wire.Role)}
	return nil
}

// UnmarshalJSON accepts non-string scalars for every text field. Servers
// that send numeric ids or phone numbers still load.
func (r *UserRecord) UnmarshalJSON(b []byte) error {
	var wire struct {
		UserID        looseString    `json:"user_id"`
		Username      looseString    `json:"username"`
		Email         looseString    `json:"email"`
		Password      looseString    `json:"password"`
		FirstName     looseString    `json:"first_name"`
		LastName      looseString    `json:"last_name"`
		PhoneNumber   looseString    `json:"phone_number"`
		Role          looseString    `json:"role"`
		Organization  looseString    `json:"organization"`
		Organizations []Organization `json:"organizations"`
		Facilities    []any          `json:"facilities"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*r = UserRecord{
		UserID:        string(wire.UserID),
		Username:      string(wire.Username),
		Email:         string(wire.Email),
		Password:      string(wire.Password),
		FirstName:     string(wire.FirstName),
		LastName:      string(wire.LastName),
		PhoneNumber:   string(wire.PhoneNumber),
		Role:          string(wire.Role),
		Organization:  string(wire.Organization),
		Organizations: wire.Organizations,
		Facilities:    wire.Facilities,
	}
	return nil
}
