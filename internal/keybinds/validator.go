package keybinds

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Severity of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a registry
type Issue struct {
	Severity Severity
	Context  Context
	Key      string
	Message  string
}

func (i Issue) Error() string {
	if i.Key == "" {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.Context, i.Message)
	}
	return fmt.Sprintf("%s: %s %q: %s", i.Severity, i.Context, i.Key, i.Message)
}

// Report collects the issues of one validation run
type Report struct {
	Issues []Issue
}

// Errors returns the issues that make a registry unusable
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues worth logging
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// OK reports whether there are no errors
func (r *Report) OK() bool { return len(r.Errors()) == 0 }

// Err joins the errors, or returns nil
func (r *Report) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, i)
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	if r == nil || len(r.Issues) == 0 {
		return "no issues"
	}
	lines := make([]string, len(r.Issues))
	for n, i := range r.Issues {
		lines[n] = i.Error()
	}
	return strings.Join(lines, "\n")
}

func (r *Report) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) add(s Severity, ctx Context, key, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: s, Context: ctx, Key: key, Message: fmt.Sprintf(format, args...)})
}

// reservedKeys always keep their built-in meaning
var reservedKeys = map[string]Action{
	"ctrl+c": ActionQuitForce,
}

// requiredActions must keep a key or the context cannot be left or used
var requiredActions = map[Context][]Action{
	ContextForm:    {ActionNextField, ActionSubmit},
	ContextConfirm: {ActionConfirmYes, ActionConfirmNo},
	ContextNotify:  {ActionDismiss},
	ContextHistory: {ActionClose},
	ContextHelp:    {ActionClose},
}

// typingContexts are active while a text input can have focus
var typingContexts = []Context{ContextGlobal, ContextForm, ContextTextInput}

// Validate checks a registry. Reserved keys and unbound required actions are
// errors; single printable keys where text is typed and context bindings
// hiding a global one are warnings.
func Validate(r *Registry) *Report {
	rep := &Report{}

	for _, ctx := range AllContexts {
		for _, b := range r.ListBindings(ctx) {
			if want, ok := reservedKeys[b.Key]; ok && b.Action != want {
				rep.add(SeverityError, ctx, b.Key, "reserved key cannot be bound to %s", b.Action)
			}
		}
	}

	for _, ctx := range AllContexts {
		for _, action := range requiredActions[ctx] {
			if len(r.GetBinding(ctx, action)) == 0 {
				rep.add(SeverityError, ctx, "", "action %s must have at least one key", action)
			}
		}
	}

	for _, ctx := range typingContexts {
		for _, b := range r.ListBindings(ctx) {
			if utf8.RuneCountInString(b.Key) == 1 {
				rep.add(SeverityWarning, ctx, b.Key, "printable key cannot be typed into text fields")
			}
		}
	}

	global := r.ListBindings(ContextGlobal)
	for _, ctx := range AllContexts {
		if ctx == ContextGlobal {
			continue
		}
		for _, g := range global {
			if action, ok := r.Match(ctx, g.Key); ok && action != g.Action {
				rep.add(SeverityWarning, ctx, g.Key, "shadows global %s with %s", g.Action, action)
			}
		}
	}

	return rep
}

// ValidateKey rejects empty keys and bare modifiers
func ValidateKey(key string) error {
	switch key {
	case "":
		return errors.New("key cannot be empty")
	case "ctrl+", "alt+", "shift+":
		return fmt.Errorf("modifier without key: %s", key)
	}
	return nil
}

// ValidateAction rejects names that are not actions
func ValidateAction(name string) error {
	if name == "" {
		return errors.New("action cannot be empty")
	}
	if !Action(name).IsKnown() {
		return fmt.Errorf("unknown action %q", name)
	}
	return nil
}
