package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running batches.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress renders a single-line progress bar. Redraws are throttled
// so tight evaluation loops do not spend their time repainting the
// terminal.
type SimpleProgress struct {
	mu          sync.Mutex
	total       int64
	current     int64
	started     time.Time
	lastRender  time.Time
	minInterval time.Duration
	writer      io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w.
// If w is nil it defaults to os.Stderr, keeping stdout free for reports.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer:      w,
		minInterval: 100 * time.Millisecond,
	}
}

// Start initializes the reporter with the total number of records.
// A zero total disables rendering.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.lastRender = time.Time{}

	p.render(true)
}

// Update advances the bar. Redraws happen at most every minInterval.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render(false)
}

// Finish completes the bar and terminates the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render(true)
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

// Error breaks the bar line and reports the failure.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\nerror: %v\n", err)
}

func (p *SimpleProgress) render(force bool) {
	if p.total == 0 {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.lastRender) < p.minInterval {
		return
	}
	p.lastRender = now

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started)
	rate := float64(p.current) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\r[%s] %.1f%% (%d/%d) %.0f rec/s",
		bar, percent, p.current, p.total, rate)
}
