package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Defaults match the client's default base URL
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8000
	DefaultBasePath = "/webhook/employee/"
)

// LoadConfig reads seed users and static routes from a YAML, JSON or JSONC
// file. Request logging is on unless the file turns it off.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock config: %w", err)
	}

	cfg := Config{Logging: true}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(raw), &cfg)
	default:
		return nil, fmt.Errorf("mock config %s: unsupported extension %q (want .yaml, .yml, .json or .jsonc)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse mock config %s: %w", path, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid mock config: %w", err)
	}
	return &cfg, nil
}

// validateConfig requires every route to name a method and path and every
// seed user to carry a string user_id
func validateConfig(config *Config) error {
	for i, route := range config.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		switch route.PathType {
		case "", "exact", "prefix":
		case "regex":
			if _, err := regexp.Compile(route.Path); err != nil {
				return fmt.Errorf("route %d: %w", i, err)
			}
		default:
			return fmt.Errorf("route %d: pathType must be exact, prefix or regex", i)
		}
	}

	for i, u := range config.Users {
		id, _ := u.Data["user_id"].(string)
		if id == "" {
			return fmt.Errorf("user %d: data.user_id must be a non-empty string", i)
		}
	}

	if config.BasePath != "" && !strings.HasPrefix(config.BasePath, "/") {
		return fmt.Errorf("basePath must start with /")
	}

	return nil
}

// applyDefaults fills unset host, port and base path
func applyDefaults(config *Config) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.BasePath == "" {
		config.BasePath = DefaultBasePath
	}
	if !strings.HasSuffix(config.BasePath, "/") {
		config.BasePath += "/"
	}
}
