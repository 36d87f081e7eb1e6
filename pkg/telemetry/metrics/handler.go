package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
// The handler exposes all registered metrics in the standard Prometheus
// exposition format. It is mounted at /metrics on the listener named in
// MetricsConfig.
//
// Example:
//
//	m := metrics.New(cfg, nil)
//	http.Handle("/metrics", m.Handler())
//	http.ListenAndServe(cfg.Listen, nil)
func (m *ClassifierMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{
			// Enable OpenMetrics encoding (preferred over Prometheus text format)
			EnableOpenMetrics: true,

			// Timeout for collecting metrics
			Timeout: 0, // No timeout (use server's timeout)

			// Maximum number of requests that can be served concurrently
			MaxRequestsInFlight: 0, // Unlimited

			// Error handling
			ErrorHandling: promhttp.ContinueOnError,

			// Error logger (nil = use default)
			ErrorLog: nil,
		},
	)
}

// HandlerWithOptions returns an HTTP handler with custom options, for
// callers that need a collection timeout or a concurrent scrape limit.
func (m *ClassifierMetrics) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(m.registry, opts)
}
