package views

import (
	"context"
	"log/slog"
	"sync"

	"github.com/studiowebux/usertabs/internal/types"
)

// EditView loads a user by id and submits updates for it
type EditView struct {
	mu sync.RWMutex

	deps    Deps
	idInput string
	user    *types.Envelope
	loading bool
	saving  bool
}

// NewEditView mounts an edit view with nothing loaded
func NewEditView(deps Deps) *EditView {
	return &EditView{deps: deps}
}

// IDInput returns the id typed into the load form
func (v *EditView) IDInput() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.idInput
}

// SetIDInput sets the id to load
func (v *EditView) SetIDInput(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.idInput = id
}

// Loading reports whether a load is in flight
func (v *EditView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// LoadLabel is the label of the load control
func (v *EditView) LoadLabel() string {
	if v.Loading() {
		return "Loading..."
	}
	return "Load"
}

// Saving reports whether an update is in flight
func (v *EditView) Saving() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.saving
}

// SaveLabel is the label of the update control
func (v *EditView) SaveLabel() string {
	if v.Saving() {
		return "Saving..."
	}
	return "Update User"
}

// User returns a copy of the loaded envelope
func (v *EditView) User() (types.Envelope, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return types.Envelope{}, false
	}
	return v.user.Clone(), true
}

// Field returns a field of the loaded user, or "" when nothing is loaded
func (v *EditView) Field(name string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return ""
	}
	val, _ := v.user.Data.Get(name)
	return val
}

// Load fetches the user named by the id input. Failure clears any loaded user.
func (v *EditView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.idInput == "" {
		v.mu.Unlock()
		v.deps.notify(msgEnterID)
		return ErrIDInputEmpty
	}
	if v.loading {
		v.mu.Unlock()
		return ErrInFlight
	}
	id := v.idInput
	v.loading = true
	v.mu.Unlock()

	env, err := loadEnvelope(ctx, v.deps, id)

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.user = nil
	} else {
		v.user = &env
	}
	v.mu.Unlock()

	if err != nil {
		v.deps.logger().ErrorContext(ctx, "API Error", slog.String("action", "load"), slog.String("user_id", id), slog.Any("error", err))
		v.deps.notify(msgLoadFailed)
		return err
	}
	return nil
}

// SetField edits a field of the loaded user and refreshes the timestamp.
// user_id is read-only.
func (v *EditView) SetField(name, value string) error {
	if name == types.FieldUserID {
		return ErrReadOnlyField
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return ErrNotLoaded
	}
	if err := v.user.Data.Set(name, value); err != nil {
		return err
	}
	v.user.Timestamp = v.deps.timestamp()
	return nil
}

// BuildPayload builds the update body. Existing organizations and facilities
// are kept; without them organizations falls back to a single entry built
// from the organization selector and facilities to an empty list.
func (v *EditView) BuildPayload() (types.PayloadEnvelope, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return types.PayloadEnvelope{}, ErrNotLoaded
	}
	return v.buildPayload(), nil
}

func (v *EditView) buildPayload() types.PayloadEnvelope {
	rec := &v.user.Data
	data := payloadFromRecord(rec)

	if rec.Organizations != nil {
		data.Organizations = append([]types.Organization{}, rec.Organizations...)
	} else {
		data.Organizations = []types.Organization{{OrgID: rec.Organization, Role: rec.Role}}
	}
	if rec.Facilities != nil {
		data.Facilities = append([]any{}, rec.Facilities...)
	} else {
		data.Facilities = []any{}
	}

	return types.PayloadEnvelope{
		Event:     types.EventUserUpdated,
		Timestamp: v.deps.timestamp(),
		Data:      data,
	}
}

// Submit sends the update. On success the local state becomes the server's
// envelope when the reply is one, otherwise exactly the payload just sent,
// which carries no organization selector. On failure nothing changes.
func (v *EditView) Submit(ctx context.Context) error {
	v.mu.Lock()
	if v.user == nil || v.user.Data.UserID == "" {
		v.mu.Unlock()
		v.deps.notify(msgLoadBeforeEdit)
		return ErrNotLoaded
	}
	if v.saving {
		v.mu.Unlock()
		return ErrInFlight
	}
	if err := missingFields(&v.user.Data, editRequired); err != nil {
		v.mu.Unlock()
		v.deps.notify(missingMessage(err))
		return err
	}
	id := v.user.Data.UserID
	payload := v.buildPayload()
	v.saving = true
	v.mu.Unlock()

	result, err := v.deps.API.UpdateUser(ctx, id, payload)

	v.mu.Lock()
	v.saving = false
	if err == nil {
		next := payload.Envelope()
		if res, perr := types.ParseFetchResult(result); perr == nil && res.Kind == types.FetchEnveloped {
			next = res.Envelope
		}
		v.user = &next
	}
	v.mu.Unlock()

	if err != nil {
		v.deps.logger().ErrorContext(ctx, "API Error", slog.String("action", "update"), slog.String("user_id", id), slog.Any("error", err))
		v.deps.notify(msgUpdateFailed)
		return err
	}

	v.deps.logger().InfoContext(ctx, "UPDATE RESULT", slog.String("user_id", id), slog.String("result", string(result)))
	v.deps.notify(msgUpdated)
	return nil
}
