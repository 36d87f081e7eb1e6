// Package store builds and holds immutable, priority-ordered rule sets.
//
// A Store is constructed once per load by the pipeline decode -> validate ->
// sort -> compile, and is read-only thereafter. Rules are ordered by
// ascending priority with ties keeping their source order (stable sort),
// so every evaluation against one Store shares a single deterministic
// order. Reload never mutates an existing Store: callers build a new one
// and atomically swap the reference, which keeps concurrent evaluation
// safe without locking.
//
// Sources abstract where rules come from. FileSource reads a single JSON
// or YAML file or a directory of them merged in lexical path order;
// MemorySource serves a fixed list for tests and embedding; the git
// source in the rules/git package satisfies the same interface for
// repository-backed rule packs.
//
// Watcher wires fsnotify to the reload path with debouncing, so editor
// save storms collapse into one rebuild.
package store
