package git

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReloadFunc is invoked after a sync that moved HEAD. Implementations
// rebuild the rule store from the source; returning an error keeps the
// previous rule set active and the poller polling.
type ReloadFunc func(ctx context.Context) error

// Poller keeps a Source in step with its remote. It pulls at a fixed
// interval and invokes the reload callback when new commits arrive.
// Sync and reload failures are logged and retried on the next tick.
type Poller struct {
	source   *Source
	interval time.Duration
	reload   ReloadFunc
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}

	polls    int64
	reloads  int64
	failures int64
}

// NewPoller creates a poller for the source. A non-positive interval
// defaults to five minutes.
func NewPoller(source *Source, interval time.Duration, reload ReloadFunc, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		interval: interval,
		reload:   reload,
		logger:   logger.With("component", "rules.git"),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop in the background. It fails if the
// poller is already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info("rule repository poller started",
		"interval", p.interval,
		"head", shortSHA(p.source.Head()))

	go p.loop(ctx)
	return nil
}

// Stop terminates the polling loop. Stopping a poller that is not
// running is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats reports poll loop counters: ticks observed, successful
// reloads, and failures of either stage.
func (p *Poller) Stats() (polls, reloads, failures int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls, p.reloads, p.failures
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce runs one sync-and-reload cycle. Failures leave the previous
// checkout and rule set in place.
func (p *Poller) pollOnce(ctx context.Context) {
	p.mu.Lock()
	p.polls++
	p.mu.Unlock()

	result, err := p.source.Sync(ctx)
	if err != nil {
		p.fail("rule repository sync failed", err)
		return
	}
	if !result.Changed {
		return
	}

	p.logger.Info("rule repository advanced",
		"from", shortSHA(result.FromSHA),
		"to", shortSHA(result.ToSHA))

	if err := p.reload(ctx); err != nil {
		p.fail("rule reload failed, keeping previous rules", err)
		return
	}

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
}

func (p *Poller) fail(msg string, err error) {
	p.mu.Lock()
	p.failures++
	p.mu.Unlock()
	p.logger.Error(msg, "error", err)
}
