package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studiowebux/usertabs/internal/types"
)

var (
	// ErrInFlight is returned when an action is triggered while the same action is still running
	ErrInFlight = errors.New("request already in progress")
	// ErrNotLoaded is returned by edit/delete actions before a user is loaded
	ErrNotLoaded = errors.New("no user loaded")
	// ErrIDInputEmpty is returned by Load when no user_id was entered
	ErrIDInputEmpty = errors.New("user_id input is empty")
	// ErrReadOnlyField is returned when editing user_id of a loaded user
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrDeclined is returned when the operator declines a confirmation
	ErrDeclined = errors.New("action declined")
)

// MissingFieldsError lists required fields left empty
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// Notifier is how views talk to the operator. Notify shows a message;
// Confirm asks a yes/no question and blocks until it is answered.
type Notifier interface {
	Notify(message string)
	Confirm(message string) bool
}

// UserAPI is the subset of the HTTP client the views need
type UserAPI interface {
	FetchUser(ctx context.Context, id string) (types.FetchResult, error)
	CreateUser(ctx context.Context, payload types.PayloadEnvelope) (json.RawMessage, error)
	UpdateUser(ctx context.Context, id string, payload types.PayloadEnvelope) (json.RawMessage, error)
	DeleteUser(ctx context.Context, id string) (json.RawMessage, error)
}

// Deps are shared by every view instance
type Deps struct {
	API      UserAPI
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) timestamp() string {
	return types.FormatTimestamp(d.now())
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) notify(msg string) {
	if d.Notifier != nil {
		d.Notifier.Notify(msg)
	}
}

func (d Deps) confirm(msg string) bool {
	if d.Notifier == nil {
		return false
	}
	return d.Notifier.Confirm(msg)
}

// Operator messages
const (
	msgCreated        = "User created successfully!"
	msgCreateFailed   = "Error creating user. Check the log."
	msgEnterID        = "Enter user_id to load"
	msgLoadFailed     = "Failed to load user. Check the log."
	msgLoadBeforeEdit = "Load a user before updating."
	msgUpdated        = "User updated successfully"
	msgUpdateFailed   = "Update failed. See the log."
	msgLoadFirst      = "Load a user first"
	msgDeleted        = "User deleted successfully"
	msgDeleteFailed   = "Delete failed. Check the log."
)

// Required fields per form
var (
	createRequired = []string{
		types.FieldUsername,
		types.FieldEmail,
		types.FieldPassword,
		types.FieldFirstName,
		types.FieldLastName,
		types.FieldRole,
		types.FieldOrganization,
	}
	editRequired = []string{
		types.FieldUsername,
		types.FieldEmail,
		types.FieldFirstName,
		types.FieldLastName,
		types.FieldRole,
		types.FieldOrganization,
	}
)

// IsRequired reports whether field is required on the create (create=true) or edit form
func IsRequired(field string, create bool) bool {
	list := editRequired
	if create {
		list = createRequired
	}
	for _, f := range list {
		if f == field {
			return true
		}
	}
	return false
}

func missingFields(rec *types.UserRecord, required []string) error {
	var missing []string
	for _, f := range required {
		v, _ := rec.Get(f)
		if v == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// loadEnvelope fetches id and normalizes the result
func loadEnvelope(ctx context.Context, d Deps, id string) (types.Envelope, error) {
	res, err := d.API.FetchUser(ctx, id)
	if err != nil {
		return types.Envelope{}, err
	}
	return types.Normalize(res, d.now()), nil
}

// payloadFromRecord copies the scalar fields into the write shape
func payloadFromRecord(rec *types.UserRecord) types.UserPayload {
	return types.UserPayload{
		UserID:      rec.UserID,
		Username:    rec.Username,
		Email:       rec.Email,
		Password:    rec.Password,
		FirstName:   rec.FirstName,
		LastName:    rec.LastName,
		PhoneNumber: rec.PhoneNumber,
		Role:        rec.Role,
	}
}

func missingMessage(err error) string {
	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return fmt.Sprintf("Please fill in: %s", strings.Join(mf.Fields, ", "))
	}
	return err.Error()
}
