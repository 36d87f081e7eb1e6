package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	pruner *Pruner

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	logger *slog.Logger
}

// NewScheduler creates a scheduler for the given pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		logger: slog.Default().With("component", "history.scheduler"),
	}
}

// Start begins scheduled pruning. An empty schedule disables the
// scheduler without error. The scheduler stops when the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := s.pruner.config.Schedule
	if schedule == "" {
		s.logger.Info("prune schedule not set, scheduler disabled")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		pruned, err := s.pruner.Prune(context.Background())
		if err != nil {
			s.logger.Error("scheduled prune failed", "error", err)
			return
		}
		if pruned > 0 {
			s.logger.Info("scheduled prune complete", "pruned", pruned)
		}
	})
	if err != nil {
		return fmt.Errorf("register prune job: %w", err)
	}

	c.Start()
	s.cron = c
	s.running = true
	s.logger.Info("prune scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning, waiting for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("prune scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the time of the next scheduled prune, or nil when
// the scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
