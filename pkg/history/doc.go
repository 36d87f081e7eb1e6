// Package history persists classification results for audit and
// trend queries.
//
// The Store interface has two implementations: a SQLite store for
// durable history and an in-memory store for tests and ephemeral
// runs. Retention is enforced by a Pruner, optionally on a cron
// schedule, which can archive entries to JSON before deleting them.
package history
