// Package history keeps the request log: one row per call made to the user
// endpoint, stored in SQLite.
package history

import (
	"sort"

	"github.com/studiowebux/usertabs/internal/types"
)

// Filter narrows a List query. Zero values match everything.
type Filter struct {
	Operation  string
	UserID     string
	FailedOnly bool
	Limit      int
}

// OperationStats summarizes calls of one operation
type OperationStats struct {
	Operation     string
	Calls         int
	Failures      int
	AvgDurationMs int64
	MaxDurationMs int64
}

// Failed reports whether a record describes a failed call
func Failed(rec types.CallRecord) bool {
	return rec.Error != "" || rec.Status < 200 || rec.Status > 299
}

// Summarize groups records by operation, ordered by operation name
func Summarize(records []types.CallRecord) []OperationStats {
	byOp := make(map[string]*OperationStats)
	totals := make(map[string]int64)

	for _, rec := range records {
		s, ok := byOp[rec.Operation]
		if !ok {
			s = &OperationStats{Operation: rec.Operation}
			byOp[rec.Operation] = s
		}
		s.Calls++
		if Failed(rec) {
			s.Failures++
		}
		if rec.Duration > s.MaxDurationMs {
			s.MaxDurationMs = rec.Duration
		}
		totals[rec.Operation] += rec.Duration
	}

	out := make([]OperationStats, 0, len(byOp))
	for op, s := range byOp {
		s.AvgDurationMs = totals[op] / int64(s.Calls)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Operation < out[j].Operation
	})
	return out
}
