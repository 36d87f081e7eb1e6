// Package health provides liveness and readiness probes for the run command.
//
// # Endpoints
//
//   - /healthz: liveness probe, answers 200 while the process runs
//   - /readyz: readiness probe, runs all registered component checks
//   - /version: build information (version, commit, build time)
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("rules", func(ctx context.Context) error {
//	    if eng.Store().Len() == 0 {
//	        return errors.New("no rules loaded")
//	    }
//	    return nil
//	})
//	checker.RegisterCheck("history", func(ctx context.Context) error {
//	    _, err := historyStore.Stats(ctx)
//	    return err
//	})
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, version, commit, buildTime)
//
// Liveness never consults component checks; orchestration systems use it to
// restart the process. Readiness runs every check concurrently with a
// per-check timeout and answers 503 while any component is unhealthy, which
// keeps traffic away until the rule store and history database are usable.
package health
