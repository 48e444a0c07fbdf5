package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvPrefix prefixes environment overrides, e.g. USERTABS_BASE_URL
	EnvPrefix = "USERTABS"
)

//go:embed config.yaml
var embeddedConfig []byte

var (
	// ConfigDir is the global configuration directory (~/.usertabs)
	ConfigDir string

	// ConfigFile is the user config file read when no --config is given
	ConfigFile string

	// DatabasePath is the SQLite database file for the request log
	DatabasePath string

	// LogFile is where the TUI writes its log
	LogFile string
)

// Config is the resolved application configuration
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	History       bool          `mapstructure:"history"`
	LogFile       string        `mapstructure:"log_file"`
	LogLevel      string        `mapstructure:"log_level"`
	Roles         []string      `mapstructure:"roles"`
	Organizations []string      `mapstructure:"organizations"`

	// Keybinds overrides TUI keys: context -> action -> keys
	Keybinds map[string]map[string][]string `mapstructure:"keybinds"`
}

// Initialize sets up the configuration directory and paths
// It creates ~/.usertabs/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".usertabs")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "usertabs.db")
	LogFile = filepath.Join(ConfigDir, "usertabs.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	return nil
}

// Load reads the embedded defaults, then merges the file at path (or the
// global ConfigFile when path is empty and it exists), then environment
// overrides. An explicit path that cannot be read is an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}

	file := path
	if file == "" && ConfigFile != "" {
		if _, err := os.Stat(ConfigFile); err == nil {
			file = ConfigFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a running program depends on
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if len(c.Roles) == 0 {
		errs = append(errs, errors.New("roles must not be empty"))
	}
	if len(c.Organizations) == 0 {
		errs = append(errs, errors.New("organizations must not be empty"))
	}
	return errors.Join(errs...)
}

// LogPath returns the configured log file, falling back to LogFile
func (c Config) LogPath() string {
	if c.LogFile == "" {
		return LogFile
	}
	if strings.HasPrefix(c.LogFile, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.LogFile[2:])
		}
	}
	return c.LogFile
}
