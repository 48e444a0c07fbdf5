package keybinds

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	r, result, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) error: %v", err)
	}
	if len(result.Issues) > 0 {
		t.Errorf("defaults should validate cleanly:\n%s", result.String())
	}
	if got, _ := r.Match(ContextForm, "ctrl+l"); got != ActionOpenHistory {
		t.Errorf("default ctrl+l = %q", got)
	}
}

func TestLoad_Override(t *testing.T) {
	r, _, err := Load(Config{
		"form":    {"open_history": {"ctrl+o"}},
		"confirm": {"confirm_no": {"n", "esc", "q"}},
	})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got, _ := r.Match(ContextForm, "ctrl+o"); got != ActionOpenHistory {
		t.Errorf("ctrl+o = %q, want open_history", got)
	}
	if _, ok := r.Match(ContextForm, "ctrl+l"); ok {
		t.Error("ctrl+l should no longer be bound on the form")
	}
	if got, _ := r.Match(ContextConfirm, "q"); got != ActionConfirmNo {
		t.Errorf("q in confirm = %q, want confirm_no", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "unknown context",
			config:  Config{"sidebar": {"submit": {"x"}}},
			wantErr: "unknown keybind context",
		},
		{
			name:    "unknown action",
			config:  Config{"form": {"launch": {"ctrl+x"}}},
			wantErr: "unknown action",
		},
		{
			name:    "empty key",
			config:  Config{"form": {"submit": {""}}},
			wantErr: "key cannot be empty",
		},
		{
			name:    "reserved key",
			config:  Config{"form": {"submit": {"ctrl+c"}}},
			wantErr: "reserved key",
		},
		{
			name:    "dialog without exit",
			config:  Config{"confirm": {"confirm_no": {}}},
			wantErr: "must have at least one key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, err := Load(tt.config)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
			// defaults are kept on error
			if got, _ := r.Match(ContextForm, "ctrl+s"); got != ActionSubmit {
				t.Errorf("defaults not kept, ctrl+s = %q", got)
			}
		})
	}
}

func TestValidate_PrintableWarning(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextForm, "q", ActionOpenHelp)

	report := Validate(r)
	if !report.OK() {
		t.Fatalf("unexpected errors:\n%s", report)
	}
	warnings := report.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	if !strings.Contains(warnings[0].Message, "printable key") {
		t.Errorf("warning = %s", warnings[0])
	}
}

func TestValidate_ShadowWarning(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextGlobal, "f5", ActionOpenHelp)
	r.Register(ContextHistory, "f5", ActionClose)

	report := Validate(r)
	found := false
	for _, w := range report.Warnings() {
		if w.Context == ContextHistory && w.Key == "f5" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a shadow warning, got:\n%s", report)
	}
}

func TestIssue_Error(t *testing.T) {
	i := Issue{
		Severity: SeverityError,
		Context:  ContextForm,
		Key:      "ctrl+c",
		Message:  "reserved key cannot be bound to submit",
	}
	want := `error: form "ctrl+c": reserved key cannot be bound to submit`
	if got := i.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	i = Issue{Severity: SeverityError, Context: ContextConfirm, Message: "action confirm_no must have at least one key"}
	if got := i.Error(); got != "error: confirm: action confirm_no must have at least one key" {
		t.Errorf("Error() = %q", got)
	}
}
