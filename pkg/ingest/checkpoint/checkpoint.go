package checkpoint

import (
	"context"
	"time"
)

// Checkpoint records one processed feed file.
type Checkpoint struct {
	// Path is the feed file path.
	Path string

	// Fingerprint is the content hash the file had when processed.
	Fingerprint string

	// Rows is how many records the file yielded.
	Rows int

	// IngestedAt is when the file was processed.
	IngestedAt time.Time
}

// Store persists checkpoints across runs. Implementations must be
// safe for concurrent use.
type Store interface {
	// Seen reports whether the file at path was already ingested with
	// this exact content fingerprint. A changed fingerprint means the
	// file must be processed again.
	Seen(ctx context.Context, path, fingerprint string) (bool, error)

	// Mark records a processed file, replacing any previous checkpoint
	// for the same path.
	Mark(ctx context.Context, path, fingerprint string, rows int) error

	// List returns all checkpoints, most recently ingested first.
	List(ctx context.Context) ([]Checkpoint, error)

	// Close releases any resources held by the store.
	Close() error
}
