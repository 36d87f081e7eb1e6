package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PrunerConfig contains retention settings for the history store.
type PrunerConfig struct {
	// RetentionDays is how many days of entries to keep. Zero disables
	// age-based pruning.
	RetentionDays int

	// MaxEntries caps the total number of entries. When exceeded, the
	// oldest entries are pruned. Zero disables count-based pruning.
	MaxEntries int64

	// Schedule is a standard cron expression for scheduled pruning.
	// Default: "0 3 * * *" (daily at 03:00).
	Schedule string

	// ArchiveBeforeDelete writes pruned entries to a JSON file before
	// deleting them.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory for archive files. Required when
	// ArchiveBeforeDelete is set.
	ArchivePath string
}

// DefaultPrunerConfig returns the default retention configuration.
func DefaultPrunerConfig() *PrunerConfig {
	return &PrunerConfig{
		RetentionDays: 90,
		MaxEntries:    0,
		Schedule:      "0 3 * * *",
	}
}

// Validate checks the configuration.
func (c *PrunerConfig) Validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative: %d", c.RetentionDays)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries cannot be negative: %d", c.MaxEntries)
	}
	if c.ArchiveBeforeDelete && c.ArchivePath == "" {
		return fmt.Errorf("archive path is required when archiving is enabled")
	}
	return nil
}

// Pruner removes history entries that fall outside the retention
// window or exceed the entry cap.
type Pruner struct {
	store     Store
	config    *PrunerConfig
	scheduler *Scheduler
	logger    *slog.Logger
}

// NewPruner creates a pruner for the given store.
func NewPruner(store Store, config *PrunerConfig) (*Pruner, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if config == nil {
		config = DefaultPrunerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "history.pruner"),
	}
	p.scheduler = NewScheduler(p)
	return p, nil
}

// Start begins scheduled pruning according to the configured cron
// expression.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop halts scheduled pruning.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled prune, or nil
// when scheduling is inactive.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

// Prune runs both retention phases and returns how many entries were
// removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		pruned, err := p.pruneByAge(ctx)
		if err != nil {
			return total, &RetentionError{RetentionDays: p.config.RetentionDays, Err: err}
		}
		total += pruned
	}

	if p.config.MaxEntries > 0 {
		pruned, err := p.pruneByCount(ctx)
		if err != nil {
			return total, &RetentionError{RetentionDays: p.config.RetentionDays, Err: err}
		}
		total += pruned
	}

	if total > 0 {
		p.logger.Info("pruned history entries", "count", total)
	}
	return total, nil
}

// pruneByAge removes entries older than the retention window.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)
	filter := &Filter{Until: &cutoff, Limit: -1}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, filter, "age"); err != nil {
			return 0, err
		}
	}

	return p.store.Delete(ctx, filter)
}

// pruneByCount removes the oldest entries above the cap.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	total, err := p.store.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	if total <= p.config.MaxEntries {
		return 0, nil
	}

	excess := int(total - p.config.MaxEntries)
	oldest, err := p.store.Query(ctx, &Filter{Ascending: true, Limit: excess})
	if err != nil {
		return 0, err
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].Timestamp
	filter := &Filter{Until: &cutoff, Limit: -1}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, filter, "count"); err != nil {
			return 0, err
		}
	}

	return p.store.Delete(ctx, filter)
}

// archive writes the entries matching the filter to a date-stamped
// JSON file before they are deleted.
func (p *Pruner) archive(ctx context.Context, filter *Filter, phase string) error {
	entries, err := p.store.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	name := fmt.Sprintf("history-%s-%s.json", phase, time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(p.config.ArchivePath, name)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	p.logger.Info("archived history entries", "path", path, "count", len(entries))
	return nil
}
