package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the history schema.
const Schema = `
-- Classification history
CREATE TABLE IF NOT EXISTS classifications (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    zone TEXT,
    risk TEXT NOT NULL,
    action TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    matched BOOLEAN NOT NULL,
    fields TEXT,
    recorded_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_classifications_timestamp ON classifications(timestamp);
CREATE INDEX IF NOT EXISTS idx_classifications_risk ON classifications(risk);
CREATE INDEX IF NOT EXISTS idx_classifications_run_id ON classifications(run_id);
CREATE INDEX IF NOT EXISTS idx_classifications_zone ON classifications(zone);
CREATE INDEX IF NOT EXISTS idx_classifications_rule_id ON classifications(rule_id);
`

// InsertSchemaVersion inserts the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// insertEntry inserts one classification entry.
const insertEntry = `
INSERT INTO classifications (
    id, run_id, timestamp, zone, risk, action, rule_id, matched, fields, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
