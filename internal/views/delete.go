package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/studiowebux/usertabs/internal/types"
)

// Summary is the read-only view of a user shown before deletion
type Summary struct {
	UserID        string
	Name          string
	Email         string
	Role          string
	Organizations string
}

// DeleteView loads a user by id and deletes it after confirmation
type DeleteView struct {
	mu sync.RWMutex

	deps     Deps
	idInput  string
	user     *types.Envelope
	loading  bool
	deleting bool
}

// NewDeleteView mounts a delete view with nothing loaded
func NewDeleteView(deps Deps) *DeleteView {
	return &DeleteView{deps: deps}
}

// IDInput returns the id typed into the load form
func (v *DeleteView) IDInput() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.idInput
}

// SetIDInput sets the id to load
func (v *DeleteView) SetIDInput(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.idInput = id
}

// Loading reports whether a load is in flight
func (v *DeleteView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// LoadLabel is the label of the load control
func (v *DeleteView) LoadLabel() string {
	if v.Loading() {
		return "Loading..."
	}
	return "Load"
}

// Deleting reports whether a delete is in flight
func (v *DeleteView) Deleting() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.deleting
}

// DeleteLabel is the label of the delete control
func (v *DeleteView) DeleteLabel() string {
	if v.Deleting() {
		return "Deleting..."
	}
	return "Delete User"
}

// User returns a copy of the loaded envelope
func (v *DeleteView) User() (types.Envelope, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return types.Envelope{}, false
	}
	return v.user.Clone(), true
}

// Summary returns the read-only summary of the loaded user
func (v *DeleteView) Summary() (Summary, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return Summary{}, false
	}
	d := &v.user.Data
	return Summary{
		UserID:        d.UserID,
		Name:          d.FullName(),
		Email:         d.Email,
		Role:          d.Role,
		Organizations: strings.Join(d.OrgIDs(), ", "),
	}, true
}

// Load fetches the user named by the id input. Failure clears any loaded user.
func (v *DeleteView) Load(ctx context.Context) error {
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

// Delete asks for confirmation and deletes the loaded user. Declining leaves
// everything untouched. Success clears the user and the id input.
func (v *DeleteView) Delete(ctx context.Context) error {
	v.mu.RLock()
	var id string
	if v.user != nil {
		id = v.user.Data.UserID
	}
	busy := v.deleting
	v.mu.RUnlock()

	if id == "" {
		v.deps.notify(msgLoadFirst)
		return ErrNotLoaded
	}
	if busy {
		return ErrInFlight
	}

	if !v.deps.confirm(fmt.Sprintf("Delete user %s? This action cannot be undone.", id)) {
		return ErrDeclined
	}

	v.mu.Lock()
	if v.deleting {
		v.mu.Unlock()
		return ErrInFlight
	}
	v.deleting = true
	v.mu.Unlock()

	result, err := v.deps.API.DeleteUser(ctx, id)

	v.mu.Lock()
	v.deleting = false
	if err == nil {
		v.user = nil
		v.idInput = ""
	}
	v.mu.Unlock()

	if err != nil {
		v.deps.logger().ErrorContext(ctx, "API Error", slog.String("action", "delete"), slog.String("user_id", id), slog.Any("error", err))
		v.deps.notify(msgDeleteFailed)
		return err
	}

	v.deps.logger().InfoContext(ctx, "DELETE RESULT", slog.String("user_id", id), slog.String("result", string(result)))
	v.deps.notify(msgDeleted)
	return nil
}
