package checkpoint

import (
	"context"
	"testing"
)

// exerciseStore runs the behavior shared by every Store implementation.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Unknown path has never been seen.
	seen, err := store.Seen(ctx, "/feed/a.csv", "fp-1")
	if err != nil {
		t.Fatalf("Seen() failed: %v", err)
	}
	if seen {
		t.Error("Seen() = true for unknown path, want false")
	}

	if err := store.Mark(ctx, "/feed/a.csv", "fp-1", 42); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	// Same path and fingerprint is seen.
	seen, err = store.Seen(ctx, "/feed/a.csv", "fp-1")
	if err != nil {
		t.Fatalf("Seen() failed: %v", err)
	}
	if !seen {
		t.Error("Seen() = false after Mark(), want true")
	}

	// A changed fingerprint means the file is new again.
	seen, err = store.Seen(ctx, "/feed/a.csv", "fp-2")
	if err != nil {
		t.Fatalf("Seen() failed: %v", err)
	}
	if seen {
		t.Error("Seen() = true for changed fingerprint, want false")
	}

	// Re-marking replaces the previous checkpoint.
	if err := store.Mark(ctx, "/feed/a.csv", "fp-2", 50); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if err := store.Mark(ctx, "/feed/b.jsonl", "fp-3", 7); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	checkpoints, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(checkpoints) != 2 {
		t.Fatalf("List() returned %d checkpoints, want 2", len(checkpoints))
	}

	byPath := make(map[string]Checkpoint, len(checkpoints))
	for _, cp := range checkpoints {
		byPath[cp.Path] = cp
	}
	if cp := byPath["/feed/a.csv"]; cp.Fingerprint != "fp-2" || cp.Rows != 50 {
		t.Errorf("checkpoint a.csv = {%s %d}, want {fp-2 50}", cp.Fingerprint, cp.Rows)
	}
	if cp := byPath["/feed/b.jsonl"]; cp.Rows != 7 {
		t.Errorf("checkpoint b.jsonl rows = %d, want 7", cp.Rows)
	}

	// Empty path and fingerprint are rejected.
	if _, err := store.Seen(ctx, "", "fp"); err == nil {
		t.Error("Seen() with empty path should fail")
	}
	if err := store.Mark(ctx, "", "fp", 0); err == nil {
		t.Error("Mark() with empty path should fail")
	}
	if err := store.Mark(ctx, "/feed/c.csv", "", 0); err == nil {
		t.Error("Mark() with empty fingerprint should fail")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	exerciseStore(t, store)

	if store.Size() != 2 {
		t.Errorf("Size() = %d, want 2", store.Size())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	done := make(chan error, 20)

	for i := 0; i < 10; i++ {
		go func(id int) {
			path := "/feed/concurrent.csv"
			done <- store.Mark(ctx, path, "fp", id)
		}(i)
		go func() {
			_, err := store.Seen(ctx, "/feed/concurrent.csv", "fp")
			done <- err
		}()
	}

	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Errorf("Concurrent access failed: %v", err)
		}
	}
}
