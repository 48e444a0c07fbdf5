package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/usertabs/internal/filter"
	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/types"
	"github.com/studiowebux/usertabs/internal/views"
	"github.com/tidwall/jsonc"
)

// ErrOrganizationsKept is returned by Update when --organization names an
// organization the user does not belong to. An update keeps the stored list.
var ErrOrganizationsKept = errors.New("update keeps the existing organizations")

// ErrHistoryDisabled is returned by History when no request log is open
var ErrHistoryDisabled = errors.New("request log is disabled (history: false)")

// Env is what every subcommand runs against
type Env struct {
	API     views.UserAPI
	History *history.Manager
	Logger  *slog.Logger

	Roles         []string
	Organizations []string

	Output      string // json, yaml, text
	Query       filter.Query
	Yes         bool   // skip delete confirmation
	Interactive bool   // stdin is a terminal

	In  io.Reader
	Out io.Writer
	Err io.Writer

	Now func() time.Time
}

func (e *Env) stdout() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return os.Stdout
}

func (e *Env) stderr() io.Writer {
	if e.Err != nil {
		return e.Err
	}
	return os.Stderr
}

func (e *Env) stdin() io.Reader {
	if e.In != nil {
		return e.In
	}
	return os.Stdin
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) deps(api views.UserAPI) views.Deps {
	return views.Deps{
		API:      api,
		Notifier: newPromptNotifier(e.stdin(), e.stderr(), e.Yes),
		Logger:   e.Logger,
		Now:      e.now,
	}
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// Get fetches a user and prints the normalized envelope
func Get(ctx context.Context, env *Env, id string) error {
	res, err := env.API.FetchUser(ctx, id)
	if err != nil {
		return err
	}
	return env.print(ctx, types.Normalize(res, env.now()))
}

// UserFlags are the per-field values given on the command line.
// A nil pointer means the flag was not set.
type UserFlags struct {
	UserID       *string
	Username     *string
	Email        *string
	Password     *string
	FirstName    *string
	LastName     *string
	PhoneNumber  *string
	Role         *string
	Organization *string
}

func (f UserFlags) fields() []fieldValue {
	all := []fieldValue{
		{types.FieldUserID, f.UserID},
		{types.FieldUsername, f.Username},
		{types.FieldEmail, f.Email},
		{types.FieldPassword, f.Password},
		{types.FieldFirstName, f.FirstName},
		{types.FieldLastName, f.LastName},
		{types.FieldPhoneNumber, f.PhoneNumber},
		{types.FieldRole, f.Role},
		{types.FieldOrganization, f.Organization},
	}
	set := all[:0]
	for _, fv := range all {
		if fv.value != nil {
			set = append(set, fv)
		}
	}
	return set
}

type fieldValue struct {
	name  string
	value *string
}

// CreateOptions configures the create subcommand
type CreateOptions struct {
	File  string // JSON or JSONC file with user fields
	Flags UserFlags
}

// Create submits a new user built from a file and/or flags
func Create(ctx context.Context, env *Env, opts CreateOptions) error {
	api := &capturingAPI{UserAPI: env.API}
	view := views.NewCreateView(env.deps(api))

	if opts.File != "" {
		rec, err := LoadUserFile(opts.File)
		if err != nil {
			return err
		}
		for _, name := range types.FormFields {
			val, _ := rec.Get(name)
			if val == "" {
				continue
			}
			if err := view.SetField(name, val); err != nil {
				return err
			}
		}
	}

	for _, fv := range opts.Flags.fields() {
		if err := view.SetField(fv.name, *fv.value); err != nil {
			return err
		}
	}

	if err := env.resolveSelectors(view); err != nil {
		return err
	}

	if err := view.Submit(ctx); err != nil {
		return err
	}
	return env.printRaw(ctx, api.Last())
}

// UpdateOptions configures the update subcommand
type UpdateOptions struct {
	Flags UserFlags
}

// Update loads a user, applies the given flags and submits the update
func Update(ctx context.Context, env *Env, id string, opts UpdateOptions) error {
	view := views.NewEditView(env.deps(env.API))
	view.SetIDInput(id)
	if err := view.Load(ctx); err != nil {
		return err
	}

	loaded, _ := view.User()
	existing := loaded.Data.OrgIDs()
	// servers return organizations only; the selector is taken from the first
	if filled := fillSelector(loaded.Data); filled.Organization != loaded.Data.Organization {
		if err := view.SetField(types.FieldOrganization, filled.Organization); err != nil {
			return err
		}
		if loaded.Data.Role == "" {
			if err := view.SetField(types.FieldRole, filled.Role); err != nil {
				return err
			}
		}
	}

	for _, fv := range opts.Flags.fields() {
		if fv.name == types.FieldUserID {
			return fmt.Errorf("%s: %w", fv.name, views.ErrReadOnlyField)
		}
		if fv.name == types.FieldOrganization && len(existing) > 0 && !slices.Contains(existing, *fv.value) {
			return fmt.Errorf("--organization %s: %w (%s)", *fv.value, ErrOrganizationsKept, strings.Join(existing, ", "))
		}
		if err := env.checkOption(fv.name, *fv.value); err != nil {
			return err
		}
		if err := view.SetField(fv.name, *fv.value); err != nil {
			return err
		}
	}

	if err := view.Submit(ctx); err != nil {
		return err
	}
	user, _ := view.User()
	return env.print(ctx, user)
}

// Delete loads a user, shows its summary, asks for confirmation and deletes it
func Delete(ctx context.Context, env *Env, id string) error {
	api := &capturingAPI{UserAPI: env.API}
	view := views.NewDeleteView(env.deps(api))
	view.SetIDInput(id)
	if err := view.Load(ctx); err != nil {
		return err
	}

	if s, ok := view.Summary(); ok {
		writeSummary(env.stderr(), s)
	}

	if err := view.Delete(ctx); err != nil {
		if errors.Is(err, views.ErrDeclined) {
			return fmt.Errorf("delete cancelled by user")
		}
		return err
	}
	return env.printRaw(ctx, api.Last())
}

// HistoryOptions configures the history subcommand
type HistoryOptions struct {
	Filter history.Filter
	Stats  bool
	Clear  bool
}

// History prints the request log
func History(ctx context.Context, env *Env, opts HistoryOptions) error {
	if env.History == nil {
		return ErrHistoryDisabled
	}

	if opts.Clear {
		n, err := env.History.GetCount(ctx)
		if err != nil {
			return err
		}
		if err := env.History.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintf(env.stderr(), "Request log cleared (%d calls removed)\n", n)
		return nil
	}

	records, err := env.History.List(ctx, opts.Filter)
	if err != nil {
		return err
	}
	if opts.Stats {
		return env.print(ctx, history.Summarize(records))
	}
	if records == nil {
		records = []types.CallRecord{}
	}
	return env.print(ctx, records)
}

// LoadUserFile reads user fields from a JSON or JSONC file. A file holding
// an envelope is unwrapped to its data member.
func LoadUserFile(path string) (types.UserRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.UserRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseUserJSON(raw)
}

// ParseUserJSON decodes user fields from JSON that may contain comments
// and trailing commas
func ParseUserJSON(raw []byte) (types.UserRecord, error) {
	clean := jsonc.ToJSON(raw)

	var probe struct {
		Data *types.UserRecord `json:"data"`
	}
	if err := json.Unmarshal(clean, &probe); err != nil {
		return types.UserRecord{}, fmt.Errorf("invalid user file: %w", err)
	}
	if probe.Data != nil {
		return fillSelector(*probe.Data), nil
	}

	var rec types.UserRecord
	if err := json.Unmarshal(clean, &rec); err != nil {
		return types.UserRecord{}, fmt.Errorf("invalid user file: %w", err)
	}
	return fillSelector(rec), nil
}

// fillSelector derives the organization selector from the first membership
// when only the list form is given
func fillSelector(rec types.UserRecord) types.UserRecord {
	if rec.Organization == "" && len(rec.Organizations) > 0 {
		rec.Organization = rec.Organizations[0].OrgID
		if rec.Role == "" {
			rec.Role = rec.Organizations[0].Role
		}
	}
	return rec
}

// resolveSelectors validates role and organization against the configured
// options, prompting with a picker when one is missing on a terminal
func (e *Env) resolveSelectors(view *views.CreateView) error {
	selectors := []struct {
		field   string
		title   string
		options []string
	}{
		{types.FieldRole, "Select role", e.Roles},
		{types.FieldOrganization, "Select organization", e.Organizations},
	}

	for _, s := range selectors {
		val := view.Field(s.field)
		if val == "" && e.Interactive && len(s.options) > 0 {
			picked, err := promptForOption(s.title, s.options)
			if err != nil {
				return err
			}
			if err := view.SetField(s.field, picked); err != nil {
				return err
			}
			continue
		}
		if err := e.checkOption(s.field, val); err != nil {
			return err
		}
	}
	return nil
}

func (e *Env) checkOption(field, value string) error {
	var options []string
	switch field {
	case types.FieldRole:
		options = e.Roles
	case types.FieldOrganization:
		options = e.Organizations
	default:
		return nil
	}
	if value == "" || len(options) == 0 {
		return nil
	}
	for _, o := range options {
		if o == value {
			return nil
		}
	}
	return fmt.Errorf("%s %q is not one of: %s", field, value, strings.Join(options, ", "))
}

// capturingAPI keeps the body of the last successful write
type capturingAPI struct {
	views.UserAPI

	mu   sync.Mutex
	last json.RawMessage
}

func (c *capturingAPI) CreateUser(ctx context.Context, p types.PayloadEnvelope) (json.RawMessage, error) {
	return c.keep(c.UserAPI.CreateUser(ctx, p))
}

func (c *capturingAPI) UpdateUser(ctx context.Context, id string, p types.PayloadEnvelope) (json.RawMessage, error) {
	return c.keep(c.UserAPI.UpdateUser(ctx, id, p))
}

func (c *capturingAPI) DeleteUser(ctx context.Context, id string) (json.RawMessage, error) {
	return c.keep(c.UserAPI.DeleteUser(ctx, id))
}

func (c *capturingAPI) keep(res json.RawMessage, err error) (json.RawMessage, error) {
	if err == nil {
		c.mu.Lock()
		c.last = res
		c.mu.Unlock()
	}
	return res, err
}

// Last returns the body of the last successful write
func (c *capturingAPI) Last() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// promptNotifier prints notifications to stderr and reads confirmations from stdin
type promptNotifier struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func newPromptNotifier(in io.Reader, out io.Writer, yes bool) *promptNotifier {
	return &promptNotifier{in: bufio.NewReader(in), out: out, yes: yes}
}

func (p *promptNotifier) Notify(message string) {
	fmt.Fprintln(p.out, message)
}

func (p *promptNotifier) Confirm(message string) bool {
	if p.yes {
		return true
	}
	fmt.Fprintf(p.out, "%s\nProceed? [y/N]: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}
