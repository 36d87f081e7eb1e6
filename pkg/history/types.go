package history

import (
	"context"
	"time"

	"emberwatch/cinder/pkg/engine"
)

// Entry is one persisted classification.
type Entry struct {
	// ID uniquely identifies this entry. Record assigns one when it
	// is empty.
	ID string `json:"id"`

	// RunID groups the entries of one classification run.
	RunID string `json:"run_id"`

	// Timestamp is the alert's own timestamp.
	Timestamp time.Time `json:"timestamp"`

	// Zone is the alert's reporting zone.
	Zone string `json:"zone,omitempty"`

	// Risk, Action, and RuleID mirror the evaluation result.
	Risk   string `json:"risk"`
	Action string `json:"action"`
	RuleID string `json:"rule_id"`

	// Matched reports whether a rule matched or the default applied.
	Matched bool `json:"matched"`

	// Fields is the evaluated field bag, stored as JSON.
	Fields engine.Record `json:"fields,omitempty"`

	// RecordedAt is when the entry was persisted. Record stamps it
	// when zero.
	RecordedAt time.Time `json:"recorded_at"`
}

// Filter selects entries for Query, Count, and Delete. Zero-valued
// fields do not filter.
type Filter struct {
	// Since and Until bound the alert timestamp, inclusive.
	Since *time.Time
	Until *time.Time

	RunID  string
	Zone   string
	Risk   string
	RuleID string

	// Ascending orders results oldest first; the default is newest
	// first.
	Ascending bool

	// Limit caps the result set. Zero means the default of 100;
	// negative means no limit. Ignored by Count and Delete.
	Limit int

	// Offset skips results for pagination. Ignored by Count and
	// Delete.
	Offset int
}

// Stats summarizes the stored history.
type Stats struct {
	Total  int64            `json:"total"`
	ByRisk map[string]int64 `json:"by_risk"`
	Oldest time.Time        `json:"oldest,omitempty"`
	Newest time.Time        `json:"newest,omitempty"`
}

// Store persists and queries classification history.
type Store interface {
	// Record persists entries. Entries without an id are assigned
	// one, and a zero RecordedAt is stamped with the current time.
	Record(ctx context.Context, entries []Entry) error

	// Query retrieves entries matching the filter, newest first
	// unless the filter says otherwise.
	Query(ctx context.Context, filter *Filter) ([]Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter *Filter) (int64, error)

	// Stats summarizes the stored history.
	Stats(ctx context.Context) (*Stats, error)

	// Delete removes entries matching the filter and returns how
	// many were removed.
	Delete(ctx context.Context, filter *Filter) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// defaultQueryLimit caps unbounded queries.
const defaultQueryLimit = 100
