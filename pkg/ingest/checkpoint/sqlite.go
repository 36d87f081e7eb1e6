package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store on SQLite using a pure Go driver, so
// the ingest path builds without cgo.
//
// SQLiteStore uses a write-ahead log for better concurrent performance
// and periodic passive checkpoints to balance write performance with
// durability.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	done      chan struct{}
	closeOnce sync.Once

	seenStmt *sql.Stmt
	markStmt *sql.Stmt
	listStmt *sql.Stmt
}

// SQLiteConfig configures the SQLite checkpoint store.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// SnapshotInterval is how often to checkpoint the WAL.
	// Default: 5 minutes.
	SnapshotInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite checkpoint store with default
// settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{
		Path:             path,
		SnapshotInterval: 5 * time.Minute,
		BusyTimeout:      5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a SQLite checkpoint store with
// custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("checkpoint db path cannot be empty")
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:   db,
		path: cfg.Path,
		done: make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize checkpoint schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare checkpoint statements: %w", err)
	}

	go store.checkpointLoop(cfg.SnapshotInterval)

	return store, nil
}

// initSchema creates the checkpoint table if it does not exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingested_files (
		path TEXT NOT NULL PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		ingested_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ingested_at ON ingested_files(ingested_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.seenStmt, err = s.db.Prepare(`
		SELECT fingerprint FROM ingested_files WHERE path = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare seen statement: %w", err)
	}

	s.markStmt, err = s.db.Prepare(`
		INSERT INTO ingested_files (path, fingerprint, row_count, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			row_count = excluded.row_count,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mark statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT path, fingerprint, row_count, ingested_at
		FROM ingested_files
		ORDER BY ingested_at DESC, path ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Seen implements Store.
func (s *SQLiteStore) Seen(ctx context.Context, path, fingerprint string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("path cannot be empty")
	}

	var stored string
	err := s.seenStmt.QueryRowContext(ctx, path).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	return stored == fingerprint, nil
}

// Mark implements Store.
func (s *SQLiteStore) Mark(ctx context.Context, path, fingerprint string, rows int) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}

	_, err := s.markStmt.ExecContext(ctx, path, fingerprint, rows, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to mark checkpoint: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Checkpoint, error) {
	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var ingestedAt int64
		if err := rows.Scan(&cp.Path, &cp.Fingerprint, &cp.Rows, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		cp.IngestedAt = time.Unix(ingestedAt, 0)
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}

	return checkpoints, nil
}

// Close releases the database. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.seenStmt != nil {
			s.seenStmt.Close()
		}
		if s.markStmt != nil {
			s.markStmt.Close()
		}
		if s.listStmt != nil {
			s.listStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
