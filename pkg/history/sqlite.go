package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"emberwatch/cinder/pkg/engine"
)

// SQLiteConfig contains configuration for the SQLite history store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5.
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true.
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the history database and prepares
// its schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "history.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas and the schema, then verifies the schema
// version.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Record implements Store. Entries are written in one transaction.
func (s *SQLiteStore) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return NewStorageError("sqlite", "prepare", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.RecordedAt.IsZero() {
			e.RecordedAt = now
		}

		fields, err := json.Marshal(e.Fields)
		if err != nil {
			return NewStorageError("sqlite", "marshal_fields", err)
		}

		if _, err := stmt.ExecContext(ctx,
			e.ID, e.RunID, e.Timestamp, e.Zone,
			e.Risk, e.Action, e.RuleID, e.Matched,
			string(fields), e.RecordedAt,
		); err != nil {
			return NewStorageError("sqlite", "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "commit", err)
	}

	s.logger.Debug("recorded classification entries", "count", len(entries))
	return nil
}

// Query implements Store.
func (s *SQLiteStore) Query(ctx context.Context, filter *Filter) ([]Entry, error) {
	if filter == nil {
		filter = &Filter{}
	}

	where, args := buildWhereClause(filter)

	query := "SELECT id, run_id, timestamp, zone, risk, action, rule_id, matched, fields, recorded_at FROM classifications"
	if where != "" {
		query += " WHERE " + where
	}

	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	query += " ORDER BY timestamp " + order

	limit := filter.Limit
	if limit == 0 {
		limit = defaultQueryLimit
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context, filter *Filter) (int64, error) {
	if filter == nil {
		filter = &Filter{}
	}

	where, args := buildWhereClause(filter)
	query := "SELECT COUNT(*) FROM classifications"
	if where != "" {
		query += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Stats implements Store.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByRisk: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM classifications",
	).Scan(&stats.Total)
	if err != nil {
		return nil, NewStorageError("sqlite", "stats", err)
	}

	// Aggregate expressions lose the TIMESTAMP decltype and scan back as
	// raw TEXT, so the bounds are read from the column itself.
	if stats.Total > 0 {
		err = s.db.QueryRowContext(ctx,
			"SELECT timestamp FROM classifications ORDER BY timestamp ASC LIMIT 1",
		).Scan(&stats.Oldest)
		if err != nil {
			return nil, NewStorageError("sqlite", "stats", err)
		}
		err = s.db.QueryRowContext(ctx,
			"SELECT timestamp FROM classifications ORDER BY timestamp DESC LIMIT 1",
		).Scan(&stats.Newest)
		if err != nil {
			return nil, NewStorageError("sqlite", "stats", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT risk, COUNT(*) FROM classifications GROUP BY risk",
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var risk string
		var count int64
		if err := rows.Scan(&risk, &count); err != nil {
			return nil, NewStorageError("sqlite", "stats", err)
		}
		stats.ByRisk[risk] = count
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "stats", err)
	}

	return stats, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, filter *Filter) (int64, error) {
	if filter == nil {
		filter = &Filter{}
	}

	where, args := buildWhereClause(filter)
	query := "DELETE FROM classifications"
	if where != "" {
		query += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("history store closed")
	return nil
}

// buildWhereClause builds the WHERE clause (without the keyword) and
// its arguments from the filter.
func buildWhereClause(filter *Filter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.Until)
	}
	if filter.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Zone != "" {
		conditions = append(conditions, "zone = ?")
		args = append(args, filter.Zone)
	}
	if filter.Risk != "" {
		conditions = append(conditions, "risk = ?")
		args = append(args, filter.Risk)
	}
	if filter.RuleID != "" {
		conditions = append(conditions, "rule_id = ?")
		args = append(args, filter.RuleID)
	}

	return strings.Join(conditions, " AND "), args
}

// scanEntry scans one row into an Entry.
func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var zone sql.NullString
	var fields string

	err := rows.Scan(
		&entry.ID, &entry.RunID, &entry.Timestamp, &zone,
		&entry.Risk, &entry.Action, &entry.RuleID, &entry.Matched,
		&fields, &entry.RecordedAt,
	)
	if err != nil {
		return Entry{}, err
	}

	if zone.Valid {
		entry.Zone = zone.String
	}
	if fields != "" && fields != "null" {
		var bag engine.Record
		if err := json.Unmarshal([]byte(fields), &bag); err == nil {
			entry.Fields = bag
		}
	}

	return entry, nil
}
