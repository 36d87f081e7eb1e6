package history

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			schedule:    "0 3 * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule disables scheduler",
			schedule:    "",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			schedule:    "not a cron line",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			defer store.Close()

			pruner, err := NewPruner(store, &PrunerConfig{
				RetentionDays: 90,
				Schedule:      tt.schedule,
			})
			if err != nil {
				t.Fatalf("NewPruner() failed: %v", err)
			}

			scheduler := NewScheduler(pruner)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err = scheduler.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				if next := scheduler.NextRun(); next == nil {
					t.Error("NextRun() returned nil for running scheduler")
				}
			}

			scheduler.Stop()
			if scheduler.IsRunning() {
				t.Error("Scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_NextRun(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	pruner, err := NewPruner(store, &PrunerConfig{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	})
	if err != nil {
		t.Fatalf("NewPruner() failed: %v", err)
	}

	scheduler := NewScheduler(pruner)

	if next := scheduler.NextRun(); next != nil {
		t.Errorf("NextRun() before Start() = %v, want nil", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	next := scheduler.NextRun()
	if next == nil {
		t.Fatal("NextRun() after Start() returned nil")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want time in the future", next)
	}
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	pruner, err := NewPruner(store, &PrunerConfig{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	})
	if err != nil {
		t.Fatalf("NewPruner() failed: %v", err)
	}

	scheduler := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	if scheduler.IsRunning() {
		t.Error("Scheduler still running after context cancellation")
	}
}

func TestScheduler_MultipleStartStop(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	pruner, err := NewPruner(store, &PrunerConfig{
		RetentionDays: 90,
		Schedule:      "0 * * * *",
	})
	if err != nil {
		t.Fatalf("NewPruner() failed: %v", err)
	}

	scheduler := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := scheduler.Start(ctx); err != nil {
			t.Fatalf("Start() iteration %d failed: %v", i, err)
		}
		if !scheduler.IsRunning() {
			t.Errorf("IsRunning() = false after Start() iteration %d", i)
		}

		scheduler.Stop()
		if scheduler.IsRunning() {
			t.Errorf("IsRunning() = true after Stop() iteration %d", i)
		}
	}
}

func TestPruner_StartStop(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	pruner, err := NewPruner(store, &PrunerConfig{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	})
	if err != nil {
		t.Fatalf("NewPruner() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("Scheduler not running after Pruner.Start()")
	}

	if next := pruner.NextPruning(); next == nil {
		t.Error("NextPruning() returned nil while running")
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("Scheduler still running after Pruner.Stop()")
	}
}
