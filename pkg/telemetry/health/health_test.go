package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNew tests the creation of a new health checker.
func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{
			name:            "default timeout",
			timeout:         0,
			expectedTimeout: 5 * time.Second,
		},
		{
			name:            "custom timeout",
			timeout:         10 * time.Second,
			expectedTimeout: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker == nil {
				t.Fatal("expected non-nil checker")
			}

			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}

			if len(checker.checks) != 0 {
				t.Errorf("expected 0 checks, got %d", len(checker.checks))
			}
		})
	}
}

// TestRegisterCheck tests registering and replacing health checks.
func TestRegisterCheck(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error {
		return errors.New("no rules loaded")
	})

	status := checker.CheckReadiness(context.Background())
	if status.Checks["rules"].Status != StatusUnhealthy {
		t.Errorf("expected rules check unhealthy, got %q", status.Checks["rules"].Status)
	}

	// Replacing the check under the same name takes effect immediately
	checker.RegisterCheck("rules", func(ctx context.Context) error { return nil })

	status = checker.CheckReadiness(context.Background())
	if status.Checks["rules"].Status != StatusOK {
		t.Errorf("expected rules check ok after replacement, got %q", status.Checks["rules"].Status)
	}
	if len(status.Checks) != 1 {
		t.Errorf("expected 1 check after replacement, got %d", len(status.Checks))
	}
}

// TestUnregisterCheck tests removing health checks.
func TestUnregisterCheck(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("history", func(ctx context.Context) error { return nil })

	checker.UnregisterCheck("history")

	status := checker.CheckReadiness(context.Background())
	if len(status.Checks) != 1 {
		t.Fatalf("expected 1 check after unregister, got %d", len(status.Checks))
	}
	if _, ok := status.Checks["rules"]; !ok {
		t.Error("expected remaining check to be rules")
	}
}

// TestCheckLiveness tests the liveness check.
func TestCheckLiveness(t *testing.T) {
	checker := New(5 * time.Second)

	status := checker.CheckLiveness(context.Background())

	if status.Status != StatusOK {
		t.Errorf("expected status %q, got %q", StatusOK, status.Status)
	}

	if status.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}

	if len(status.Checks) > 0 {
		t.Error("expected no checks in liveness response")
	}
}

// TestCheckReadiness_NoChecks tests readiness with no checks registered.
func TestCheckReadiness_NoChecks(t *testing.T) {
	checker := New(5 * time.Second)

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusReady {
		t.Errorf("expected status %q, got %q", StatusReady, status.Status)
	}

	if status.Checks == nil {
		t.Error("expected non-nil checks map")
	}
}

// TestCheckReadiness_AllHealthy tests readiness with all healthy checks.
func TestCheckReadiness_AllHealthy(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("history", func(ctx context.Context) error { return nil })

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusReady {
		t.Errorf("expected status %q, got %q", StatusReady, status.Status)
	}

	if len(status.Checks) != 2 {
		t.Errorf("expected 2 checks, got %d", len(status.Checks))
	}

	for name, result := range status.Checks {
		if result.Status != StatusOK {
			t.Errorf("expected check %q to be ok, got %q", name, result.Status)
		}
	}
}

// TestCheckReadiness_SomeUnhealthy tests readiness with unhealthy checks.
func TestCheckReadiness_SomeUnhealthy(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("history", func(ctx context.Context) error {
		return errors.New("database is closed")
	})

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusDegraded {
		t.Errorf("expected status %q, got %q", StatusDegraded, status.Status)
	}

	healthy := status.Checks["rules"]
	if healthy.Status != StatusOK {
		t.Errorf("expected rules check ok, got %q", healthy.Status)
	}

	unhealthy := status.Checks["history"]
	if unhealthy.Status != StatusUnhealthy {
		t.Errorf("expected history check unhealthy, got %q", unhealthy.Status)
	}
	if unhealthy.Message != "database is closed" {
		t.Errorf("expected message 'database is closed', got %q", unhealthy.Message)
	}
}

// TestCheckReadiness_Timeout tests readiness with a check that times out.
func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(100 * time.Millisecond)

	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusDegraded {
		t.Errorf("expected status %q, got %q", StatusDegraded, status.Status)
	}

	slowResult := status.Checks["slow"]
	if slowResult.Status != StatusUnhealthy {
		t.Errorf("expected slow check unhealthy, got %q", slowResult.Status)
	}
	if slowResult.Message != "health check timeout" {
		t.Errorf("expected timeout message, got %q", slowResult.Message)
	}
}

// TestCheckReadiness_ContextCancellation tests readiness with context cancellation.
func TestCheckReadiness_ContextCancellation(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return nil
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := checker.CheckReadiness(ctx)

	result := status.Checks["rules"]
	if result.Status != StatusUnhealthy {
		t.Errorf("expected rules check unhealthy, got %q", result.Status)
	}
}

// TestCheckResult_Duration tests that check results include duration.
func TestCheckResult_Duration(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	slowResult := status.Checks["slow"]
	if slowResult.DurationMS < 50 {
		t.Errorf("expected duration >= 50ms, got %v", slowResult.DurationMS)
	}
}

// TestLivenessHandler tests the liveness HTTP handler.
func TestLivenessHandler(t *testing.T) {
	checker := New(5 * time.Second)
	handler := checker.LivenessHandler()

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkBody      bool
	}{
		{
			name:           "GET request",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			checkBody:      true,
		},
		{
			name:           "HEAD request",
			method:         http.MethodHead,
			expectedStatus: http.StatusOK,
			checkBody:      false,
		},
		{
			name:           "POST request",
			method:         http.MethodPost,
			expectedStatus: http.StatusMethodNotAllowed,
			checkBody:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/healthz", nil)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			if tt.checkBody {
				var status Status
				if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}

				if status.Status != StatusOK {
					t.Errorf("expected status %q, got %q", StatusOK, status.Status)
				}
			}
		})
	}
}

// TestReadinessHandler tests the readiness HTTP handler.
func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		setupChecks    func(*Checker)
		expectedStatus int
		expectedHealth string
	}{
		{
			name: "all healthy",
			setupChecks: func(c *Checker) {
				c.RegisterCheck("rules", func(ctx context.Context) error { return nil })
			},
			expectedStatus: http.StatusOK,
			expectedHealth: StatusReady,
		},
		{
			name: "some unhealthy",
			setupChecks: func(c *Checker) {
				c.RegisterCheck("rules", func(ctx context.Context) error { return nil })
				c.RegisterCheck("history", func(ctx context.Context) error {
					return errors.New("failed")
				})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: StatusDegraded,
		},
		{
			name:           "no checks",
			setupChecks:    func(c *Checker) {},
			expectedStatus: http.StatusOK,
			expectedHealth: StatusReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(5 * time.Second)
			tt.setupChecks(checker)

			handler := checker.ReadinessHandler()

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var status Status
			if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if status.Status != tt.expectedHealth {
				t.Errorf("expected status %q, got %q", tt.expectedHealth, status.Status)
			}
		})
	}
}

// TestVersionHandler tests the version HTTP handler.
func TestVersionHandler(t *testing.T) {
	version := "1.0.0"
	commit := "abc123"
	buildTime := "2026-08-25T00:00:00Z"

	handler := VersionHandler(version, commit, buildTime)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if info.Version != version {
		t.Errorf("expected version %q, got %q", version, info.Version)
	}
	if info.Commit != commit {
		t.Errorf("expected commit %q, got %q", commit, info.Commit)
	}
	if info.BuildTime != buildTime {
		t.Errorf("expected build time %q, got %q", buildTime, info.BuildTime)
	}
	if info.GoVersion == "" {
		t.Error("expected non-empty go version")
	}
}

// TestRegister tests mounting all probe endpoints on a mux.
func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	checker := New(5 * time.Second)

	Register(mux, checker, "1.0.0", "abc123", "2026-08-25")

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/version", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

// TestConcurrentChecks tests concurrent readiness checks.
func TestConcurrentChecks(t *testing.T) {
	checker := New(5 * time.Second)

	checker.RegisterCheck("rules", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	done := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		go func() {
			status := checker.CheckReadiness(context.Background())
			if status.Status != StatusReady {
				t.Errorf("expected status %q, got %q", StatusReady, status.Status)
			}
			done <- true
		}()
	}

	for i := 0; i < 5; i++ {
		<-done
	}
}
