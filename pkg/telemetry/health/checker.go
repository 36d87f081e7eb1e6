package health

import (
	"context"
	"sync"
	"time"
)

// Component status values reported by readiness checks.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes a single component. It returns nil if the component is
// healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one component check.
type CheckResult struct {
	// Status is StatusOK or StatusUnhealthy.
	Status string `json:"status"`

	// Message carries the error text for unhealthy components.
	Message string `json:"message,omitempty"`

	// DurationMS is how long the check took, in milliseconds.
	DurationMS float64 `json:"duration_ms,omitempty"`
}

// Status is the aggregate health of the process.
type Status struct {
	// Status is StatusOK (liveness), StatusReady, or StatusDegraded.
	Status string `json:"status"`

	// Checks holds per-component results for readiness responses.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the check ran.
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs named component checks for the readiness probe.
// The run command registers checks for the rule store and, when history
// is enabled, the history database.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck adds or replaces the check for a named component.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// UnregisterCheck removes the check for a named component.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// CheckLiveness reports that the process is running. It never consults
// component checks, so it stays fast under load.
func (c *Checker) CheckLiveness(ctx context.Context) Status {
	return Status{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered check concurrently and aggregates
// the results. Any unhealthy component degrades the overall status.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	// No checks registered means nothing can be degraded
	if len(checks) == 0 {
		return Status{
			Status:    StatusReady,
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Status{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes a single check with the configured timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		elapsed := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:     StatusUnhealthy,
				Message:    err.Error(),
				DurationMS: durationMS(elapsed),
			}
		}
		return CheckResult{
			Status:     StatusOK,
			DurationMS: durationMS(elapsed),
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:     StatusUnhealthy,
			Message:    "health check timeout",
			DurationMS: durationMS(time.Since(start)),
		}
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
