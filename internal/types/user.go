package types

import (
	"fmt"
	"time"
)

// Event tags carried in the envelope "event" field
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserFetched = "user.fetched"
)

// TimestampLayout is the ISO-8601 layout used for envelope timestamps (UTC, millisecond precision)
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Field names as they appear on the wire and in the forms
const (
	FieldUserID       = "user_id"
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldPhoneNumber  = "phone_number"
	FieldRole         = "role"
	FieldOrganization = "organization"
)

// FormFields lists the editable scalar fields in form order
var FormFields = []string{
	FieldUserID,
	FieldUsername,
	FieldEmail,
	FieldPassword,
	FieldFirstName,
	FieldLastName,
	FieldPhoneNumber,
	FieldRole,
	FieldOrganization,
}

// DefaultRoles are the role selector options
var DefaultRoles = []string{"doctor", "nurse", "staff", "administrator"}

// DefaultOrganizations are the organization selector options
var DefaultOrganizations = []string{"org1", "org2", "org3"}

// Organization is one membership entry of a user
type Organization struct {
	OrgID string `json:"org_id" yaml:"org_id"`
	Role  string `json:"role" yaml:"role"`
}

// UserRecord is the user payload held by a form.
// Organization is the single selector value; Organizations is the list form
// sent on write and returned by the server.
type UserRecord struct {
	UserID        string         `json:"user_id" yaml:"user_id"`
	Username      string         `json:"username" yaml:"username"`
	Email         string         `json:"email" yaml:"email"`
	Password      string         `json:"password" yaml:"password"`
	FirstName     string         `json:"first_name" yaml:"first_name"`
	LastName      string         `json:"last_name" yaml:"last_name"`
	PhoneNumber   string         `json:"phone_number" yaml:"phone_number"`
	Role          string         `json:"role" yaml:"role"`
	Organization  string         `json:"organization,omitempty" yaml:"organization,omitempty"`
	Organizations []Organization `json:"organizations,omitempty" yaml:"organizations,omitempty"`
	Facilities    []any          `json:"facilities,omitempty" yaml:"facilities,omitempty"`
}

// Get returns the value of a scalar field by wire name
func (r *UserRecord) Get(name string) (string, error) {
	p, err := r.field(name)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set assigns a scalar field by wire name
func (r *UserRecord) Set(name, value string) error {
	p, err := r.field(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (r *UserRecord) field(name string) (*string, error) {
	switch name {
	case FieldUserID:
		return &r.UserID, nil
	case FieldUsername:
		return &r.Username, nil
	case FieldEmail:
		return &r.Email, nil
	case FieldPassword:
		return &r.Password, nil
	case FieldFirstName:
		return &r.FirstName, nil
	case FieldLastName:
		return &r.LastName, nil
	case FieldPhoneNumber:
		return &r.PhoneNumber, nil
	case FieldRole:
		return &r.Role, nil
	case FieldOrganization:
		return &r.Organization, nil
	}
	return nil, fmt.Errorf("unknown field %q", name)
}

// OrgIDs returns the org_id of every joined organization
func (r *UserRecord) OrgIDs() []string {
	ids := make([]string, 0, len(r.Organizations))
	for _, o := range r.Organizations {
		ids = append(ids, o.OrgID)
	}
	return ids
}

// FullName joins first and last name with a single space
func (r *UserRecord) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Clone returns a deep copy of the record
func (r UserRecord) Clone() UserRecord {
	out := r
	if r.Organizations != nil {
		out.Organizations = append([]Organization{}, r.Organizations...)
	}
	if r.Facilities != nil {
		out.Facilities = append([]any{}, r.Facilities...)
	}
	return out
}

// Envelope pairs an event tag and timestamp with a user record
type Envelope struct {
	Event     string     `json:"event" yaml:"event"`
	Timestamp string     `json:"timestamp" yaml:"timestamp"`
	Data      UserRecord `json:"data" yaml:"data"`
}

// Clone returns a deep copy of the envelope
func (e Envelope) Clone() Envelope {
	e.Data = e.Data.Clone()
	return e
}

// UserPayload is the write shape of a user: organizations and facilities are
// always present, the single organization selector is not sent.
type UserPayload struct {
	UserID        string         `json:"user_id" yaml:"user_id"`
	Username      string         `json:"username" yaml:"username"`
	Email         string         `json:"email" yaml:"email"`
	Password      string         `json:"password" yaml:"password"`
	FirstName     string         `json:"first_name" yaml:"first_name"`
	LastName      string         `json:"last_name" yaml:"last_name"`
	PhoneNumber   string         `json:"phone_number" yaml:"phone_number"`
	Role          string         `json:"role" yaml:"role"`
	Organizations []Organization `json:"organizations" yaml:"organizations"`
	Facilities    []any          `json:"facilities" yaml:"facilities"`
}

// Record converts the payload back into a form record
func (p UserPayload) Record() UserRecord {
	return UserRecord{
		UserID:        p.UserID,
		Username:      p.Username,
		Email:         p.Email,
		Password:      p.Password,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PhoneNumber:   p.PhoneNumber,
		Role:          p.Role,
		Organizations: append([]Organization{}, p.Organizations...),
		Facilities:    append([]any{}, p.Facilities...),
	}
}

// PayloadEnvelope is the request body of create and update calls
type PayloadEnvelope struct {
	Event     string      `json:"event" yaml:"event"`
	Timestamp string      `json:"timestamp" yaml:"timestamp"`
	Data      UserPayload `json:"data" yaml:"data"`
}

// Envelope converts the payload envelope into a form envelope
func (p PayloadEnvelope) Envelope() Envelope {
	return Envelope{
		Event:     p.Event,
		Timestamp: p.Timestamp,
		Data:      p.Data.Record(),
	}
}

// FormatTimestamp renders t the way envelope timestamps are written
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
