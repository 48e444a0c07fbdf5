package keybinds

import (
	"strings"
	"testing"
)

func TestRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"form submit", ContextForm, "ctrl+s", ActionSubmit, true},
		{"global fallback", ContextHistory, "ctrl+c", ActionQuitForce, true},
		{"button tab", ContextButton, "2", ActionTabEdit, true},
		{"select cycle", ContextSelect, "right", ActionSelectNext, true},
		{"history top", ContextHistory, "g", ActionGoToTop, true},
		{"history bottom is case sensitive", ContextHistory, "G", ActionGoToBottom, true},
		{"unbound", ContextForm, "x", "", false},
		{"context isolation", ContextTextInput, "2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = (%q, %v), want (%q, %v)", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestRegistry_GetBinding(t *testing.T) {
	r := NewDefaultRegistry()

	keys := r.GetBinding(ContextForm, ActionNextField)
	if len(keys) != 2 || keys[0] != "down" || keys[1] != "tab" {
		t.Errorf("GetBinding(next_field) = %v, want [down tab]", keys)
	}

	if got := r.GetBindingString(ContextForm, ActionReload); got != "unbound" {
		t.Errorf("GetBindingString(unbound) = %q", got)
	}
}

func TestRegistry_Rebind(t *testing.T) {
	r := NewDefaultRegistry()

	r.Rebind(ContextForm, ActionOpenHistory, []string{"ctrl+o"})

	if _, ok := r.Match(ContextForm, "ctrl+l"); ok {
		t.Error("old key should be unbound after Rebind")
	}
	if got, _ := r.Match(ContextForm, "ctrl+o"); got != ActionOpenHistory {
		t.Errorf("Match(ctrl+o) = %q, want open_history", got)
	}

	r.Rebind(ContextForm, ActionOpenHelp, nil)
	if keys := r.GetBinding(ContextForm, ActionOpenHelp); len(keys) != 0 {
		t.Errorf("open_help keys = %v, want none", keys)
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Clone()

	c.Register(ContextForm, "ctrl+x", ActionSubmit)

	if r.HasBinding(ContextForm, "ctrl+x") {
		t.Error("change to clone leaked into original")
	}
	if !c.HasBinding(ContextForm, "ctrl+x") {
		t.Error("clone missing new binding")
	}
}

func TestRegistry_String(t *testing.T) {
	out := NewDefaultRegistry().String()
	if !strings.Contains(out, "form\tctrl+s\tsubmit") {
		t.Errorf("String() missing form submit line:\n%s", out)
	}
}
