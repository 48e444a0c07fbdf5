package keybinds

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Binding is one key of one action in one context
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry maps keys to actions per context. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Context]map[string]Action
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[Context]map[string]Action)}
}

// Register binds key to action, replacing whatever key had in context
func (r *Registry) Register(context Context, key string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(context, key, action)
}

func (r *Registry) register(context Context, key string, action Action) {
	keys, ok := r.bindings[context]
	if !ok {
		keys = make(map[string]Action)
		r.bindings[context] = keys
	}
	keys[key] = action
}

// RegisterMultiple binds each of keys to action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		r.register(context, key, action)
	}
}

// Rebind replaces every key of action in context with keys. An empty list
// leaves the action unbound.
func (r *Registry) Rebind(context Context, action Action, keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, act := range r.bindings[context] {
		if act == action {
			delete(r.bindings[context], key)
		}
	}
	for _, key := range keys {
		r.register(context, key, action)
	}
}

// Match resolves key in context, falling back to the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range []Context{context, ContextGlobal} {
		if action, ok := r.bindings[c][key]; ok {
			return action, true
		}
	}
	return "", false
}

// GetBinding returns the keys of action in context, sorted
func (r *Registry) GetBinding(context Context, action Action) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for key, act := range r.bindings[context] {
		if act == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetBindingString joins the keys of action for display, or "unbound"
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, " / ")
}

// ListBindings returns the bindings of a context sorted by action, then key
func (r *Registry) ListBindings(context Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings := make([]Binding, 0, len(r.bindings[context]))
	for key, action := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}
	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Action != bindings[j].Action {
			return bindings[i].Action < bindings[j].Action
		}
		return bindings[i].Key < bindings[j].Key
	})
	return bindings
}

// Actions returns the distinct actions bound in a context, sorted
func (r *Registry) Actions(context Context) []Action {
	seen := make(map[Action]bool)
	var actions []Action
	for _, b := range r.ListBindings(context) {
		if !seen[b.Action] {
			seen[b.Action] = true
			actions = append(actions, b.Action)
		}
	}
	return actions
}

// HasBinding reports whether key resolves to any action in context
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone returns an independent copy, used to try config overrides without
// touching the defaults
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := NewRegistry()
	for c, keys := range r.bindings {
		for key, action := range keys {
			out.register(c, key, action)
		}
	}
	return out
}

// String lists every binding, one per line
func (r *Registry) String() string {
	var sb strings.Builder
	for _, c := range AllContexts {
		for _, b := range r.ListBindings(c) {
			sb.WriteString(fmt.Sprintf("%s\t%s\t%s\n", c, b.Key, b.Action))
		}
	}
	return sb.String()
}
