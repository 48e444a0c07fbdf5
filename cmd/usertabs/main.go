package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/usertabs/internal/cli"
	"github.com/studiowebux/usertabs/internal/client"
	"github.com/studiowebux/usertabs/internal/config"
	"github.com/studiowebux/usertabs/internal/filter"
	"github.com/studiowebux/usertabs/internal/history"
	"github.com/studiowebux/usertabs/internal/keybinds"
	"github.com/studiowebux/usertabs/internal/logging"
	"github.com/studiowebux/usertabs/internal/mock"
	"github.com/studiowebux/usertabs/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "usertabs",
	Short: "usertabs - manage users through the employee webhook",
	Long: `usertabs creates, edits and deletes user records through a single
JSON webhook endpoint.

Run without arguments to start the TUI, or use a subcommand for scripting.

Examples:
  usertabs                                   # Start interactive TUI
  usertabs get u1                            # Print a user
  usertabs get u1 -o json --query data.email # Print one field
  usertabs create --file alice.jsonc         # Create from a JSON/JSONC file
  usertabs create --username bob --role nurse --organization org2 ...
  usertabs update u1 --email new@example.com # Load, change, submit
  usertabs delete u1 --yes                   # Delete without prompting
  usertabs history --failed                  # Show failed calls`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <user_id>",
	Short: "Fetch a user and print it as an envelope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, env *cli.Env) error {
			return cli.Get(ctx, env, args[0])
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user from flags and/or a JSON file",
	Long: `Create a user. Fields come from --file (JSON or JSONC, either the bare
user object or an envelope with a data member) and are overridden by flags.
A missing role or organization is picked interactively when stdin is a
terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, env *cli.Env) error {
			return cli.Create(ctx, env, cli.CreateOptions{
				File:  flagFile,
				Flags: userFlags(cmd),
			})
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <user_id>",
	Short: "Load a user, apply flag changes and submit the update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, env *cli.Env) error {
			return cli.Update(ctx, env, args[0], cli.UpdateOptions{Flags: userFlags(cmd)})
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <user_id>",
	Short: "Load a user, confirm and delete it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, env *cli.Env) error {
			return cli.Delete(ctx, env, args[0])
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the request log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, env *cli.Env) error {
			return cli.History(ctx, env, cli.HistoryOptions{
				Filter: history.Filter{
					Operation:  flagHistOp,
					UserID:     flagHistUserID,
					FailedOnly: flagHistFailed,
					Limit:      flagHistLimit,
				},
				Stats: flagHistStats,
				Clear: flagHistClear,
			})
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local mock of the employee webhook",
	Long: `Serve a local stand-in for the employee webhook with an in-memory user
store. Point usertabs at it with --base-url (the address is printed on start).
A YAML/JSON/JSONC file can seed users and add static routes that simulate
failures.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMock(cmd)
	},
}

// Persistent flags
var (
	flagBaseURL string
	flagConfig  string
	flagOutput  string
	flagQuery   string
	flagYes     bool
	flagTimeout time.Duration
)

// Flags for create/update
var (
	flagFile string
)

// Flags for mock
var (
	flagMockFile string
	flagMockHost string
	flagMockPort int
)

// Flags for history
var (
	flagHistOp     string
	flagHistUserID string
	flagHistFailed bool
	flagHistLimit  int
	flagHistStats  bool
	flagHistClear  bool
)

// userFieldFlags maps flag names to record fields
var userFieldFlags = []struct {
	flag  string
	usage string
}{
	{"user-id", "User ID"},
	{"username", "Username"},
	{"email", "Email"},
	{"password", "Password"},
	{"first-name", "First name"},
	{"last-name", "Last name"},
	{"phone", "Phone number"},
	{"role", "Role (one of the configured roles)"},
	{"organization", "Organization (one of the configured organizations)"},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Webhook base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.usertabs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (json/yaml/text)")
	rootCmd.PersistentFlags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command) applied to the JSON output")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (overrides config, 0 = none)")

	createCmd.Flags().StringVarP(&flagFile, "file", "f", "", "JSON or JSONC file with user fields")
	for _, f := range userFieldFlags {
		createCmd.Flags().String(f.flag, "", f.usage)
		if f.flag != "user-id" {
			updateCmd.Flags().String(f.flag, "", f.usage)
		}
	}

	historyCmd.Flags().StringVar(&flagHistOp, "op", "", "Only show one operation (fetch/create/update/delete)")
	historyCmd.Flags().StringVar(&flagHistUserID, "user-id", "", "Only show calls for this user_id")
	historyCmd.Flags().BoolVar(&flagHistFailed, "failed", false, "Only show failed calls")
	historyCmd.Flags().IntVarP(&flagHistLimit, "limit", "n", 50, "Maximum rows (0 = all)")
	historyCmd.Flags().BoolVar(&flagHistStats, "stats", false, "Show per-operation statistics")
	historyCmd.Flags().BoolVar(&flagHistClear, "clear", false, "Delete every logged call")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	mockCmd.Flags().StringVarP(&flagMockFile, "file", "f", "", "Mock config file (YAML, JSON or JSONC)")
	mockCmd.Flags().StringVar(&flagMockHost, "host", "", "Listen host (default 127.0.0.1)")
	mockCmd.Flags().IntVar(&flagMockPort, "port", 0, "Listen port (default 8000)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}

// userFlags collects the field flags the user actually set
func userFlags(cmd *cobra.Command) cli.UserFlags {
	get := func(name string) *string {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			return nil
		}
		v := f.Value.String()
		return &v
	}
	return cli.UserFlags{
		UserID:       get("user-id"),
		Username:     get("username"),
		Email:        get("email"),
		Password:     get("password"),
		FirstName:    get("first-name"),
		LastName:     get("last-name"),
		PhoneNumber:  get("phone"),
		Role:         get("role"),
		Organization: get("organization"),
	}
}

// loadConfig initializes the config directory and applies flag overrides
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.Initialize(); err != nil {
		return config.Config{}, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	return cfg, cfg.Validate()
}

// openHistory opens the request log when enabled. A log that cannot be
// opened is reported and the program continues without it.
func openHistory(cfg config.Config, logger *slog.Logger) *history.Manager {
	if !cfg.History {
		return nil
	}
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		logger.Warn("request log unavailable", "path", config.DatabasePath, "error", err)
		return nil
	}
	return mgr
}

func newClient(cfg config.Config, logger *slog.Logger, mgr *history.Manager) *client.Client {
	c := client.New(cfg.BaseURL, cfg.Timeout)
	c.Logger = logger
	if mgr != nil {
		c.Recorder = mgr
	}
	return c
}

// withEnv builds the CLI environment and runs fn with a context cancelled on interrupt
func withEnv(cmd *cobra.Command, fn func(context.Context, *cli.Env) error) error {
	if !cli.ValidOutput(flagOutput) {
		return fmt.Errorf("invalid output format %q (want json, yaml or text)", flagOutput)
	}

	query, err := filter.Parse(flagQuery)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewStderr(logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	mgr := openHistory(cfg, logger)
	if mgr != nil {
		defer mgr.Close()
	}

	env := &cli.Env{
		API:           newClient(cfg, logger, mgr),
		History:       mgr,
		Logger:        logger,
		Roles:         cfg.Roles,
		Organizations: cfg.Organizations,
		Output:        flagOutput,
		Query:         query,
		Yes:           flagYes,
		Interactive:   cli.IsInteractive(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return fn(ctx, env)
}

// runTUI starts the interactive TUI. Logs go to a file since the TUI owns the terminal.
func runTUI(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	mgr := openHistory(cfg, logger)
	if mgr != nil {
		defer mgr.Close()
	}

	// a bad keybinds section falls back to the defaults
	keys, report, err := keybinds.Load(keybinds.Config(cfg.Keybinds))
	if err != nil {
		logger.Error("keybinds ignored", "error", err)
	}
	for _, w := range report.Warnings() {
		logger.Warn("keybind", "warning", w.Error())
	}

	logger.Info("starting TUI", "base_url", cfg.BaseURL, "version", version)

	return tui.Run(tui.Options{
		API:           newClient(cfg, logger, mgr),
		History:       mgr,
		Logger:        logger,
		Roles:         cfg.Roles,
		Organizations: cfg.Organizations,
		BaseURL:       cfg.BaseURL,
		Keybinds:      keys,
	})
}

// runMock serves the mock webhook until interrupted
func runMock(cmd *cobra.Command) error {
	logger := logging.NewStderr(slog.LevelInfo)

	cfg := &mock.Config{Logging: true}
	if flagMockFile != "" {
		loaded, err := mock.LoadConfig(flagMockFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flagMockHost != "" {
		cfg.Host = flagMockHost
	}
	if flagMockPort != 0 {
		cfg.Port = flagMockPort
	}

	server := mock.NewServer(cfg, logger)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Mock webhook at %s (ctrl+c to stop)\n", server.GetAddress())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.ErrOrStderr()
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return server.Stop()
		case <-server.NotifyChannel():
			logs := server.GetLogs()
			// the log is capped; once full, show the newest entry
			if seen >= len(logs) {
				seen = max(len(logs)-1, 0)
			}
			for _, l := range logs[seen:] {
				fmt.Fprintf(out, "%s %-6s %s -> %d (%s) users=%d\n",
					l.Timestamp.Format("15:04:05"), l.Method, l.Path, l.Status, l.MatchedRule, server.Store().Len())
			}
			seen = len(logs)
		}
	}
}
