package checkpoint

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. All checkpoints are
// lost when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]Checkpoint
}

// NewMemoryStore creates an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string]Checkpoint),
	}
}

// Seen implements Store.
func (m *MemoryStore) Seen(ctx context.Context, path, fingerprint string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("path cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.files[path]
	if !ok {
		return false, nil
	}
	return cp.Fingerprint == fingerprint, nil
}

// Mark implements Store.
func (m *MemoryStore) Mark(ctx context.Context, path, fingerprint string, rows int) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = Checkpoint{
		Path:        path,
		Fingerprint: fingerprint,
		Rows:        rows,
		IngestedAt:  time.Now(),
	}
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context) ([]Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	checkpoints := make([]Checkpoint, 0, len(m.files))
	for _, cp := range m.files {
		checkpoints = append(checkpoints, cp)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		if checkpoints[i].IngestedAt.Equal(checkpoints[j].IngestedAt) {
			return checkpoints[i].Path < checkpoints[j].Path
		}
		return checkpoints[j].IngestedAt.Before(checkpoints[i].IngestedAt)
	})

	return checkpoints, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the number of stored checkpoints.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
