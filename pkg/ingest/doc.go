// Package ingest feeds alert files from a drop directory through the
// classification engine. A FeedWatcher reports created and modified
// feed files after a per-file debounce, and a Processor reads each
// file, classifies its records, optionally records the results in the
// history store, and checkpoints the file so restarts never classify
// the same content twice.
package ingest
