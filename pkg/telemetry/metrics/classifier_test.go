package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"emberwatch/cinder/pkg/engine"
)

// Helper function to create test config
func testConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "cinder",
	}
}

// TestNew tests metrics creation
func TestNew(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	m := New(cfg, registry)

	if m == nil {
		t.Fatal("Expected non-nil metrics")
	}
	if m.registry != registry {
		t.Error("Metrics registry not set correctly")
	}
	if m.Registry() != registry {
		t.Error("Registry() did not return the injected registry")
	}
}

// TestNew_NilRegistry tests that a fresh registry is created when none is given
func TestNew_NilRegistry(t *testing.T) {
	m := New(testConfig(), nil)

	if m.Registry() == nil {
		t.Fatal("Expected a registry to be created")
	}
}

// TestClassifierMetrics_ObserveEvaluation tests evaluation recording
func TestClassifierMetrics_ObserveEvaluation(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	tests := []struct {
		name   string
		result engine.Result
	}{
		{
			name: "critical match",
			result: engine.Result{
				Risk:    "CRITICAL",
				Action:  "Immediate mobilization.",
				RuleID:  "HEAT_CRITICAL_01",
				Matched: true,
			},
		},
		{
			name: "high match",
			result: engine.Result{
				Risk:    "HIGH",
				Action:  "Dispatch patrol.",
				RuleID:  "DRY_LIGHTNING_01",
				Matched: true,
			},
		},
		{
			name: "default result",
			result: engine.Result{
				Risk:    "NORMAL",
				Action:  "routine monitoring",
				RuleID:  "NO_RULE",
				Matched: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.ObserveEvaluation(tt.result, 50*time.Microsecond)
		})
	}

	// Verify the evaluation counter saw every record
	count := testutil.ToFloat64(m.evaluationsTotal)
	if count != 3 {
		t.Errorf("Expected 3 evaluations, got %f", count)
	}

	// Verify only matches were counted by rule and risk
	matched := testutil.ToFloat64(m.matchesTotal.WithLabelValues("HEAT_CRITICAL_01", "CRITICAL"))
	if matched != 1 {
		t.Errorf("Expected 1 critical match, got %f", matched)
	}
	unmatched := testutil.ToFloat64(m.matchesTotal.WithLabelValues("NO_RULE", "NORMAL"))
	if unmatched != 0 {
		t.Errorf("Expected no match recorded for the default result, got %f", unmatched)
	}
}

// TestClassifierMetrics_ObserveBatch tests batch size recording
func TestClassifierMetrics_ObserveBatch(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	m.ObserveBatch(250)
	m.ObserveBatch(750)

	count := testutil.ToFloat64(m.batchRecordsTotal)
	if count != 1000 {
		t.Errorf("Expected 1000 batch records, got %f", count)
	}
}

// TestClassifierMetrics_RecordReload tests reload outcome recording
func TestClassifierMetrics_RecordReload(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	m.RecordReload(ReloadOutcomeSuccess)
	m.RecordReload(ReloadOutcomeSuccess)
	m.RecordReload(ReloadOutcomeFailure)

	successes := testutil.ToFloat64(m.reloadsTotal.WithLabelValues(ReloadOutcomeSuccess))
	if successes != 2 {
		t.Errorf("Expected 2 successful reloads, got %f", successes)
	}
	failures := testutil.ToFloat64(m.reloadsTotal.WithLabelValues(ReloadOutcomeFailure))
	if failures != 1 {
		t.Errorf("Expected 1 failed reload, got %f", failures)
	}
}

// TestClassifierMetrics_SetActiveRules tests the active rule gauge
func TestClassifierMetrics_SetActiveRules(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	m.SetActiveRules(5)
	if got := testutil.ToFloat64(m.activeRules); got != 5 {
		t.Errorf("Expected gauge=5, got %f", got)
	}

	m.SetActiveRules(3)
	if got := testutil.ToFloat64(m.activeRules); got != 3 {
		t.Errorf("Expected gauge=3, got %f", got)
	}
}

// TestClassifierMetrics_Disabled tests that metrics are not recorded when disabled
func TestClassifierMetrics_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	// These should not panic
	m.ObserveEvaluation(engine.Result{Risk: "HIGH", RuleID: "HEAT_HIGH_01", Matched: true}, time.Millisecond)
	m.ObserveBatch(100)
	m.RecordReload(ReloadOutcomeSuccess)
	m.SetActiveRules(7)

	if got := testutil.ToFloat64(m.evaluationsTotal); got != 0 {
		t.Errorf("Expected no evaluations recorded while disabled, got %f", got)
	}
	if got := testutil.ToFloat64(m.activeRules); got != 0 {
		t.Errorf("Expected gauge untouched while disabled, got %f", got)
	}
}

// TestClassifierMetrics_DefaultNamespace tests the namespace fallback
func TestClassifierMetrics_DefaultNamespace(t *testing.T) {
	m := New(Config{Enabled: true}, nil)
	m.ObserveEvaluation(engine.Result{Risk: "LOW", RuleID: "WIND_LOW_01", Matched: true}, time.Microsecond)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "cinder_evaluations_total" {
			found = true
		}
	}
	if !found {
		t.Error("Expected cinder_evaluations_total in gathered metrics")
	}
}

// TestClassifierMetrics_Handler tests the /metrics endpoint
func TestClassifierMetrics_Handler(t *testing.T) {
	cfg := testConfig()
	m := New(cfg, nil)
	m.ObserveEvaluation(engine.Result{Risk: "MEDIUM", RuleID: "HEAT_MEDIUM_01", Matched: true}, 20*time.Microsecond)
	m.SetActiveRules(5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"cinder_evaluations_total",
		"cinder_matches_total",
		"cinder_active_rules",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %s in metrics output", want)
		}
	}
}

// TestClassifierMetrics_ConcurrentRecording tests thread-safety
func TestClassifierMetrics_ConcurrentRecording(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	m := New(cfg, registry)

	done := make(chan bool)

	// Spawn multiple goroutines recording metrics
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				m.ObserveEvaluation(engine.Result{
					Risk:    "HIGH",
					RuleID:  "HEAT_HIGH_01",
					Matched: true,
				}, 10*time.Microsecond)
				m.ObserveBatch(1)
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify we got all evaluations recorded
	count := testutil.ToFloat64(m.evaluationsTotal)
	if count != 1000 {
		t.Errorf("Expected 1000 evaluations, got %f", count)
	}
}
