package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// ValidOutput reports whether format is a supported -o value
func ValidOutput(format string) bool {
	switch format {
	case OutputJSON, OutputYAML, OutputText:
		return true
	}
	return false
}

// print writes v in the configured format. A query is applied to the JSON
// form of v and its result printed as-is.
func (e *Env) print(ctx context.Context, v any) error {
	if e.Query.String() != "" {
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return e.query(ctx, body)
	}

	out, err := formatOutput(v, e.Output)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprint(e.stdout(), out)
	return nil
}

// printRaw prints a server response body
func (e *Env) printRaw(ctx context.Context, body json.RawMessage) error {
	if len(body) == 0 {
		return nil
	}
	if e.Query.String() != "" {
		return e.query(ctx, body)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Fprintln(e.stdout(), string(body))
		return nil
	}
	return e.print(ctx, v)
}

func (e *Env) query(ctx context.Context, body []byte) error {
	out, err := e.Query.Apply(ctx, body)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout(), out)
	return nil
}

// formatOutput formats v based on the output format
func formatOutput(v any, format string) (string, error) {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case OutputYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
		return buf.String(), nil

	case OutputText:
		fallthrough
	default:
		var sb strings.Builder
		writeText(&sb, v)
		return sb.String(), nil
	}
}

func writeText(w io.Writer, v any) {
	switch val := v.(type) {
	case types.Envelope:
		writeEnvelope(w, val)
	case []types.CallRecord:
		writeRecords(w, val)
	case []history.OperationStats:
		writeStats(w, val)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(w, "%v\n", v)
			return
		}
		fmt.Fprintln(w, string(data))
	}
}

func writeEnvelope(w io.Writer, env types.Envelope) {
	fmt.Fprintf(w, "%-14s %s\n", "event:", env.Event)
	fmt.Fprintf(w, "%-14s %s\n", "timestamp:", env.Timestamp)
	for _, name := range types.FormFields {
		if name == types.FieldPassword {
			continue
		}
		val, _ := env.Data.Get(name)
		if name == types.FieldOrganization && val == "" {
			continue
		}
		fmt.Fprintf(w, "%-14s %s\n", name+":", val)
	}

	if len(env.Data.Organizations) > 0 {
		orgs := make([]string, 0, len(env.Data.Organizations))
		for _, o := range env.Data.Organizations {
			orgs = append(orgs, fmt.Sprintf("%s (%s)", o.OrgID, o.Role))
		}
		fmt.Fprintf(w, "%-14s %s\n", "organizations:", strings.Join(orgs, ", "))
	}
	if len(env.Data.Facilities) > 0 {
		fmt.Fprintf(w, "%-14s %d\n", "facilities:", len(env.Data.Facilities))
	}
}

func writeRecords(w io.Writer, records []types.CallRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No requests recorded")
		return
	}
	for _, r := range records {
		status := fmt.Sprintf("%s%d%s", getStatusColor(r.Status), r.Status, colorReset)
		line := fmt.Sprintf("%s  %-6s  %-4s  %s  %5dms  %s",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Operation,
			r.Method,
			status,
			r.Duration,
			r.URL,
		)
		if r.Error != "" {
			line += fmt.Sprintf("  %s%s%s", colorRed, r.Error, colorReset)
		}
		fmt.Fprintln(w, line)
	}
}

func writeStats(w io.Writer, stats []history.OperationStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No requests recorded")
		return
	}
	fmt.Fprintf(w, "%-8s %6s %8s %8s %8s\n", "OP", "CALLS", "FAILED", "AVG", "MAX")
	for _, s := range stats {
		fmt.Fprintf(w, "%-8s %6d %8d %6dms %6dms\n", s.Operation, s.Calls, s.Failures, s.AvgDurationMs, s.MaxDurationMs)
	}
}

func writeSummary(w io.Writer, s views.Summary) {
	fmt.Fprintf(w, "User ID:       %s\n", s.UserID)
	fmt.Fprintf(w, "Name:          %s\n", s.Name)
	fmt.Fprintf(w, "Email:         %s\n", s.Email)
	fmt.Fprintf(w, "Role:          %s\n", s.Role)
	fmt.Fprintf(w, "Organizations: %s\n", s.Organizations)
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if status >= 200 && status < 300 {
		return colorGreen
	} else if status >= 400 || status == 0 {
		return colorRed
	}
	return colorYellow
}
