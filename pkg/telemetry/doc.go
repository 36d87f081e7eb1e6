// Package telemetry groups the observability packages for emberwatch.
//
// # Components
//
//   - logging: structured logging on log/slog with context enrichment
//   - metrics: Prometheus metrics for evaluations, matches, and reloads
//   - health: liveness and readiness probe endpoints
//   - tracing: optional OpenTelemetry spans around the pipelines
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//
//	m := metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled, Namespace: cfg.Metrics.Namespace}, nil)
//	eng, err := engine.New(st, engine.DefaultConfig().WithMetrics(m), logger)
//
//	checker := health.New(0)
//	checker.RegisterCheck("rules", rulesCheck)
//
//	tracer, err := tracing.New(tracing.FromEnv("emberwatch", version))
//
// Each component stands alone; commands wire only what their mode needs.
// The classify and generate commands carry logging alone, while run adds
// metrics, health probes, and tracing.
package telemetry
