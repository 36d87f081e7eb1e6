// Package checkpoint tracks which alert feed files have already been
// ingested, so a restarted watcher never reclassifies a file it has
// seen. A checkpoint pairs a file path with a content fingerprint;
// when the fingerprint changes the file counts as new again.
//
// Two stores are provided: a SQLite store (pure Go driver, no cgo)
// for run mode and an in-memory store for tests and one-shot runs.
package checkpoint
