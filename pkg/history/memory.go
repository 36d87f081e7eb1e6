package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store on an in-process slice. It is intended
// for tests and one-shot pipelines that do not persist history.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError("memory", "record", errClosed)
	}

	now := time.Now().UTC()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.RecordedAt.IsZero() {
			e.RecordedAt = now
		}
		m.entries = append(m.entries, e)
	}
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, filter *Filter) ([]Entry, error) {
	if filter == nil {
		filter = &Filter{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStorageError("memory", "query", errClosed)
	}

	matched := []Entry{}
	for _, e := range m.entries {
		if filter.matches(&e) {
			matched = append(matched, e)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if filter.Ascending {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[j].Timestamp.Before(matched[i].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []Entry{}, nil
		}
		matched = matched[filter.Offset:]
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultQueryLimit
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count implements Store.
func (m *MemoryStore) Count(ctx context.Context, filter *Filter) (int64, error) {
	if filter == nil {
		filter = &Filter{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, NewStorageError("memory", "count", errClosed)
	}

	var count int64
	for _, e := range m.entries {
		if filter.matches(&e) {
			count++
		}
	}
	return count, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStorageError("memory", "stats", errClosed)
	}

	stats := &Stats{ByRisk: make(map[string]int64)}
	for _, e := range m.entries {
		stats.Total++
		stats.ByRisk[e.Risk]++
		if stats.Oldest.IsZero() || e.Timestamp.Before(stats.Oldest) {
			stats.Oldest = e.Timestamp
		}
		if e.Timestamp.After(stats.Newest) {
			stats.Newest = e.Timestamp
		}
	}
	return stats, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, filter *Filter) (int64, error) {
	if filter == nil {
		filter = &Filter{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, NewStorageError("memory", "delete", errClosed)
	}

	kept := m.entries[:0]
	var deleted int64
	for _, e := range m.entries {
		if filter.matches(&e) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return deleted, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// matches reports whether an entry satisfies the filter. Limit and
// Offset are applied by the caller.
func (f *Filter) matches(e *Entry) bool {
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if f.Zone != "" && e.Zone != f.Zone {
		return false
	}
	if f.Risk != "" && e.Risk != f.Risk {
		return false
	}
	if f.RuleID != "" && e.RuleID != f.RuleID {
		return false
	}
	return true
}
