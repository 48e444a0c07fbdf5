package views

import (
	"context"
	"log/slog"
	"sync"

	"github.com/studiowebux/usertabs/internal/types"
)

// CreateView holds the create form envelope
type CreateView struct {
	mu sync.RWMutex

	deps       Deps
	form       types.Envelope
	submitting bool
}

// NewCreateView mounts an empty create form
func NewCreateView(deps Deps) *CreateView {
	return &CreateView{
		deps: deps,
		form: types.Envelope{
			Event:     types.EventUserCreated,
			Timestamp: deps.timestamp(),
		},
	}
}

// Envelope returns a copy of the form state
func (v *CreateView) Envelope() types.Envelope {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.form.Clone()
}

// Field returns the current value of a form field
func (v *CreateView) Field(name string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, _ := v.form.Data.Get(name)
	return val
}

// SetField updates one field and refreshes the timestamp
func (v *CreateView) SetField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.form.Data.Set(name, value); err != nil {
		return err
	}
	v.form.Timestamp = v.deps.timestamp()
	return nil
}

// Submitting reports whether a create request is in flight
func (v *CreateView) Submitting() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.submitting
}

// SubmitLabel is the label of the submit control
func (v *CreateView) SubmitLabel() string {
	if v.Submitting() {
		return "Submitting..."
	}
	return "Submit"
}

// BuildPayload builds the create request body from the current form
func (v *CreateView) BuildPayload() types.PayloadEnvelope {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.buildPayload()
}

func (v *CreateView) buildPayload() types.PayloadEnvelope {
	data := payloadFromRecord(&v.form.Data)
	data.Organizations = []types.Organization{
		{OrgID: v.form.Data.Organization, Role: v.form.Data.Role},
	}
	data.Facilities = []any{}

	return types.PayloadEnvelope{
		Event:     v.form.Event,
		Timestamp: v.deps.timestamp(),
		Data:      data,
	}
}

// Submit sends the form. On success every data field is reset (the event tag
// is kept); on failure the form is left as it was.
func (v *CreateView) Submit(ctx context.Context) error {
	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return ErrInFlight
	}
	if err := missingFields(&v.form.Data, createRequired); err != nil {
		v.mu.Unlock()
		v.deps.notify(missingMessage(err))
		return err
	}
	payload := v.buildPayload()
	v.submitting = true
	v.mu.Unlock()

	result, err := v.deps.API.CreateUser(ctx, payload)

	v.mu.Lock()
	v.submitting = false
	if err == nil {
		v.form.Data = types.UserRecord{}
	}
	v.mu.Unlock()

	if err != nil {
		v.deps.logger().ErrorContext(ctx, "API Error", slog.String("action", "create"), slog.Any("error", err))
		v.deps.notify(msgCreateFailed)
		return err
	}

	v.deps.logger().InfoContext(ctx, "API RESULT", slog.String("action", "create"), slog.String("result", string(result)))
	v.deps.notify(msgCreated)
	return nil
}
