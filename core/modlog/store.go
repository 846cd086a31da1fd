// Package modlog persists the audit trail of manual schedule overrides.
//
// Records are append-only. Every backend returns them in insertion order.
package modlog

import (
	"context"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// Record captures one applied override or reset.
type Record struct {
	Timestamp time.Time    `json:"timestamp"`
	RunID     string       `json:"run_id"`
	Action    string       `json:"action"`
	TrainID   string       `json:"train_id"`
	From      model.Status `json:"from"`
	To        model.Status `json:"to"`
	Forced    bool         `json:"forced"`
	Message   string       `json:"message"`
}

// Query filters records. Zero values match everything.
type Query struct {
	RunID   string
	TrainID string
	Start   time.Time
	End     time.Time
}

// Match reports whether r satisfies the query.
func (q Query) Match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.TrainID != "" && r.TrainID != q.TrainID {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Messages extracts the human readable lines in order.
func Messages(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Message)
	}
	return out
}
