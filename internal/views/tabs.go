package views

import "sync"

// Tab identifies one of the three views
type Tab int

const (
	TabCreate Tab = iota
	TabEdit
	TabDelete
)

// AllTabs lists the tabs in strip order
var AllTabs = []Tab{TabCreate, TabEdit, TabDelete}

func (t Tab) String() string {
	switch t {
	case TabEdit:
		return "Edit User"
	case TabDelete:
		return "Delete User"
	default:
		return "Create User"
	}
}

// Tabs selects between the create, edit and delete views. Only the active
// view exists; switching builds a fresh instance of the new one.
type Tabs struct {
	mu sync.RWMutex

	deps   Deps
	active Tab
	create *CreateView
	edit   *EditView
	del    *DeleteView
}

// NewTabs starts on the create tab
func NewTabs(deps Deps) *Tabs {
	t := &Tabs{deps: deps}
	t.mount(TabCreate)
	return t
}

// Active returns the selected tab
func (t *Tabs) Active() Tab {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Select switches to tab. Selecting the active tab keeps its state.
func (t *Tabs) Select(tab Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tab == t.active {
		return
	}
	t.mount(tab)
}

// Next selects the tab to the right, wrapping around
func (t *Tabs) Next() {
	t.Select(Tab((int(t.Active()) + 1) % len(AllTabs)))
}

// Prev selects the tab to the left, wrapping around
func (t *Tabs) Prev() {
	t.Select(Tab((int(t.Active()) + len(AllTabs) - 1) % len(AllTabs)))
}

// Create returns the create view, or nil when another tab is active
func (t *Tabs) Create() *CreateView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.create
}

// Edit returns the edit view, or nil when another tab is active
func (t *Tabs) Edit() *EditView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.edit
}

// Delete returns the delete view, or nil when another tab is active
func (t *Tabs) Delete() *DeleteView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.del
}

func (t *Tabs) mount(tab Tab) {
	t.active = tab
	t.create, t.edit, t.del = nil, nil, nil
	switch tab {
	case TabEdit:
		t.edit = NewEditView(t.deps)
	case TabDelete:
		t.del = NewDeleteView(t.deps)
	default:
		t.active = TabCreate
		t.create = NewCreateView(t.deps)
	}
}
