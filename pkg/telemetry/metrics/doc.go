// Package metrics provides Prometheus metrics for the cinder classifier.
//
// # Overview
//
// ClassifierMetrics tracks rule evaluation throughput, match distribution,
// evaluation latency, and rule reloads. It implements engine.Observer, so
// wiring it into an engine is a single option:
//
//	m := metrics.New(metrics.Config{Enabled: true}, nil)
//	eng, err := engine.New(st, engine.DefaultConfig().WithMetrics(m), nil)
//
// # Metrics
//
//	cinder_evaluations_total             counter:   records evaluated
//	cinder_matches_total                 counter:   matches by rule_id and risk
//	cinder_evaluation_duration_seconds   histogram: single-record latency
//	cinder_batch_records_total           counter:   records through batch runs
//	cinder_reloads_total                 counter:   reload attempts by outcome
//	cinder_active_rules                  gauge:     rules in the active store
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus
// format:
//
//	# HELP cinder_matches_total Total number of rule matches by rule and risk
//	# TYPE cinder_matches_total counter
//	cinder_matches_total{rule_id="HEAT_CRITICAL_01",risk="CRITICAL"} 42
//
// When Config.Enabled is false every recording method is a no-op; callers
// never check the flag themselves.
package metrics
