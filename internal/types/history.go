package types

import "time"

// Operation names used in the request log
const (
	OpFetch  = "fetch"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// CallRecord describes one completed call to the user endpoint
type CallRecord struct {
	ID        int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Operation string    `json:"operation" yaml:"operation"`
	Method    string    `json:"method" yaml:"method"`
	URL       string    `json:"url" yaml:"url"`
	Event     string    `json:"event,omitempty" yaml:"event,omitempty"`
	UserID    string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Status    int       `json:"status" yaml:"status"`
	Duration  int64     `json:"duration_ms" yaml:"duration_ms"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}
