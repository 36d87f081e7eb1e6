package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.0.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns the /healthz handler. It answers 200 whenever
// the process is alive.
//
// Example response:
//
//	{"status": "ok", "timestamp": "2026-08-25T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler returns the /readyz handler. It runs all registered
// component checks and answers 503 when any component is unhealthy.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "rules": {"status": "ok", "duration_ms": 0.1},
//	        "history": {"status": "unhealthy", "message": "database is closed"}
//	    },
//	    "timestamp": "2026-08-25T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if status.Status == StatusDegraded || status.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// VersionHandler returns the /version handler with build information.
//
// Example response:
//
//	{
//	    "version": "1.0.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-25T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// Register mounts the probe endpoints on mux:
//
//	/healthz  liveness probe
//	/readyz   readiness probe
//	/version  build information
func Register(mux *http.ServeMux, checker *Checker, version, commit, buildTime string) {
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	mux.HandleFunc("/version", VersionHandler(version, commit, buildTime))
}
