// Package filter applies --query expressions to JSON command output.
//
// A query is either a JMESPath expression evaluated against the printed
// document (data.organizations[].org_id) or a $(command) run through sh with
// the document on stdin.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
)

// ShellTimeout bounds a $(command) query
const ShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Query is a parsed --query value. The zero Query passes documents through.
type Query struct {
	raw   string
	shell string
	jp    *jmespath.JMESPath
}

// Parse checks query up front so a bad expression fails before any request
// is sent
func Parse(query string) (Query, error) {
	q := Query{raw: query}
	if query == "" {
		return q, nil
	}
	if m := shellPattern.FindStringSubmatch(query); len(m) > 1 {
		q.shell = m[1]
		return q, nil
	}
	jp, err := jmespath.Compile(query)
	if err != nil {
		return Query{}, fmt.Errorf("invalid query %q: %w", query, err)
	}
	q.jp = jp
	return q, nil
}

// String returns the query as given
func (q Query) String() string { return q.raw }

// IsShell reports whether the query runs a shell command
func (q Query) IsShell() bool { return q.shell != "" }

// Apply runs the query against a JSON document
func (q Query) Apply(ctx context.Context, body []byte) (string, error) {
	switch {
	case q.shell != "":
		return runShell(ctx, body, q.shell)
	case q.jp != nil:
		return q.search(body)
	default:
		return string(body), nil
	}
}

// Apply parses and runs query in one step
func Apply(ctx context.Context, body []byte, query string) (string, error) {
	q, err := Parse(query)
	if err != nil {
		return "", err
	}
	return q.Apply(ctx, body)
}

func (q Query) search(body []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("query input is not JSON: %w", err)
	}

	result, err := q.jp.Search(doc)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", q.raw, err)
	}

	switch v := result.(type) {
	case nil:
		return "null", nil
	case string:
		// unquoted so a user_id can feed the next command
		return v, nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal query result: %w", err)
	}
	return string(out), nil
}

func runShell(ctx context.Context, body []byte, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(body)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("query command %q failed: %s", command, msg)
		}
		return "", fmt.Errorf("query command %q failed: %w", command, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
