package keybinds

import (
	"errors"
	"fmt"
)

// Config holds user overrides: context -> action -> keys. Listing an action
// replaces all of its default keys in that context; an empty list unbinds it.
//
//	keybinds:
//	  form:
//	    open_history: ["ctrl+o"]
//	  history:
//	    close: ["esc", "q"]
type Config map[string]map[string][]string

// ApplyConfig rebinds every listed action. Unknown contexts, actions and
// malformed keys are collected; the valid entries are still applied.
func ApplyConfig(registry *Registry, config Config) error {
	var errs []error
	for contextName, actions := range config {
		context := Context(contextName)
		if !context.IsKnown() {
			errs = append(errs, fmt.Errorf("unknown keybind context %q", contextName))
			continue
		}
		for actionName, keys := range actions {
			action := Action(actionName)
			if err := ValidateAction(actionName); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", contextName, err))
				continue
			}
			valid := true
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					errs = append(errs, fmt.Errorf("%s.%s: %w", contextName, actionName, err))
					valid = false
				}
			}
			if valid {
				registry.Rebind(context, action, keys)
			}
		}
	}
	return errors.Join(errs...)
}

// Load builds the default registry with config applied on top and validates
// the result. Warnings come back with a usable registry; any error leaves the
// defaults in place.
func Load(config Config) (*Registry, *Report, error) {
	registry := NewDefaultRegistry()
	if len(config) == 0 {
		return registry, &Report{}, nil
	}

	candidate := registry.Clone()
	if err := ApplyConfig(candidate, config); err != nil {
		return registry, &Report{}, fmt.Errorf("invalid keybinds: %w", err)
	}

	report := Validate(candidate)
	if !report.OK() {
		return registry, report, fmt.Errorf("invalid keybinds: %w", report.Err())
	}
	return candidate, report, nil
}
