package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"emberwatch/cinder/pkg/engine"
)

// Reload outcome label values for the reloads counter.
const (
	ReloadOutcomeSuccess = "success"
	ReloadOutcomeFailure = "failure"
)

// Config contains configuration for classifier metrics.
type Config struct {
	// Enabled controls whether metrics are recorded. When false every
	// recording method is a no-op, so callers never need their own guard.
	Enabled bool

	// Namespace is the metric name prefix (default: "cinder").
	Namespace string
}

// ClassifierMetrics tracks evaluation, batch, and reload metrics.
//
// Metrics:
//   - cinder_evaluations_total: records evaluated
//   - cinder_matches_total: rule matches by rule_id and risk
//   - cinder_evaluation_duration_seconds: single-record evaluation duration
//   - cinder_batch_records_total: records processed through batch evaluation
//   - cinder_reloads_total: rule reload attempts by outcome
//   - cinder_active_rules: rules in the active store
//
// ClassifierMetrics implements engine.Observer, so an engine configured
// with WithMetrics records evaluations without further wiring.
type ClassifierMetrics struct {
	enabled  bool
	registry *prometheus.Registry

	evaluationsTotal   prometheus.Counter
	matchesTotal       *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	batchRecordsTotal  prometheus.Counter
	reloadsTotal       *prometheus.CounterVec
	activeRules        prometheus.Gauge
}

var _ engine.Observer = (*ClassifierMetrics)(nil)

// New creates classifier metrics registered with the provided registry.
// If registry is nil, a fresh registry is created.
func New(cfg Config, registry *prometheus.Registry) *ClassifierMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "cinder"
	}

	m := &ClassifierMetrics{
		enabled:  cfg.Enabled,
		registry: registry,

		evaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of records evaluated",
			},
		),

		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of rule matches by rule and risk",
			},
			[]string{"rule_id", "risk"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of single-record evaluation in seconds",
				// Evaluations are fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		batchRecordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_records_total",
				Help:      "Total number of records processed through batch evaluation",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of rule reload attempts by outcome",
			},
			[]string{"outcome"},
		),

		activeRules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_rules",
				Help:      "Number of rules in the active store",
			},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.matchesTotal,
		m.evaluationDuration,
		m.batchRecordsTotal,
		m.reloadsTotal,
		m.activeRules,
	)

	return m
}

// ObserveEvaluation records a single classified record. Matches are
// additionally counted by rule id and risk.
func (m *ClassifierMetrics) ObserveEvaluation(res engine.Result, elapsed time.Duration) {
	if !m.enabled {
		return
	}

	m.evaluationsTotal.Inc()
	m.evaluationDuration.Observe(elapsed.Seconds())
	if res.Matched {
		m.matchesTotal.WithLabelValues(res.RuleID, res.Risk).Inc()
	}
}

// ObserveBatch records the size of a completed evaluation batch.
func (m *ClassifierMetrics) ObserveBatch(size int) {
	if !m.enabled {
		return
	}

	m.batchRecordsTotal.Add(float64(size))
}

// RecordReload records a rule reload attempt.
//
// Parameters:
//   - outcome: ReloadOutcomeSuccess or ReloadOutcomeFailure
func (m *ClassifierMetrics) RecordReload(outcome string) {
	if !m.enabled {
		return
	}

	m.reloadsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveRules updates the active rule count gauge.
func (m *ClassifierMetrics) SetActiveRules(count int) {
	if !m.enabled {
		return
	}

	m.activeRules.Set(float64(count))
}

// Registry returns the Prometheus registry used by these metrics.
func (m *ClassifierMetrics) Registry() *prometheus.Registry {
	return m.registry
}
