package mock

import "time"

// Config represents the mock webhook configuration
type Config struct {
	Port     int     `json:"port" yaml:"port"`         // Server port (default: 8000)
	Host     string  `json:"host" yaml:"host"`         // Server host (default: 127.0.0.1)
	BasePath string  `json:"basePath" yaml:"basePath"` // Webhook path (default: /webhook/employee/)
	Routes   []Route `json:"routes" yaml:"routes"`     // Static routes checked before the webhook
	Logging  bool    `json:"logging" yaml:"logging"`   // Keep a request log

	// Seed users loaded into the store at startup
	Users []SeedUser `json:"users,omitempty" yaml:"users,omitempty"`
}

// SeedUser is a stored user. Raw users are served without the envelope.
type SeedUser struct {
	Raw  bool           `json:"raw,omitempty" yaml:"raw,omitempty"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Route represents a static route that overrides the webhook
type Route struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`         // Route description
	Method   string            `json:"method" yaml:"method"`                         // HTTP method (GET, POST, etc.)
	Path     string            `json:"path" yaml:"path"`                             // URL path pattern
	PathType string            `json:"pathType,omitempty" yaml:"pathType,omitempty"` // exact, prefix, regex (default: exact)
	Status   int               `json:"status" yaml:"status"`                         // HTTP status code
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`   // Response headers
	Body     string            `json:"body,omitempty" yaml:"body,omitempty"`         // Response body
	Delay    int               `json:"delay,omitempty" yaml:"delay,omitempty"`       // Response delay in milliseconds
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Body        string        `json:"body"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Duration    time.Duration `json:"duration"`
}
