// Package engine classifies alert records against a loaded rule set.
//
// Evaluation is first-match: rules are scanned in the store's priority
// order and the first rule whose entire condition list holds decides
// the result. Evaluation never returns an error; records with missing
// or malformed fields simply fail the conditions that inspect them and
// fall through to the default result.
package engine

import (
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/store"
)

// Engine evaluates records against the active rule store.
//
// The active store is held behind an atomic pointer: evaluation takes
// no locks, any number of goroutines may classify concurrently, and
// Swap replaces the rule set without disturbing evaluations already
// in flight.
type Engine struct {
	store  atomic.Pointer[store.Store]
	config *Config
	logger *slog.Logger
}

// New creates an evaluation engine over the given rule store.
func New(st *store.Store, config *Config, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if st == nil {
		return nil, fmt.Errorf("rule store cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config: config,
		logger: logger,
	}
	engine.store.Store(st)

	if st.Len() == 0 {
		logger.Warn("rule store is empty, every record classifies as the default result")
	}
	logger.Info("evaluation engine ready",
		"rules", st.Len(),
		"source", st.Source(),
		"fingerprint", st.Fingerprint(),
	)

	return engine, nil
}

// EvaluateOne classifies a single record. It returns the result of the
// first rule that matches, or the default result when none does. It
// never fails: missing fields and kind mismatches count as unmatched
// conditions.
func (e *Engine) EvaluateOne(rec Record) Result {
	var tr *Trace
	if e.config.EnableTrace {
		tr = &Trace{}
	}

	res := e.evaluate(rec, tr)

	if tr != nil {
		e.logger.Debug("record evaluated",
			"rule_id", res.RuleID,
			"risk", res.Risk,
			"matched", res.Matched,
			"steps", len(tr.Steps),
			"elapsed", tr.Elapsed,
		)
	}

	return res
}

// Explain classifies a single record like EvaluateOne and additionally
// returns the evaluation trace, regardless of the trace setting. The
// trace lists every condition that was inspected, so conditions absent
// from it were skipped by short-circuiting.
func (e *Engine) Explain(rec Record) (Result, *Trace) {
	tr := &Trace{}
	res := e.evaluate(rec, tr)
	return res, tr
}

// EvaluateBatch lazily maps a sequence of records to results. Each
// record is classified only when the consumer advances, results arrive
// in input order, and stopping early stops the pull from the source
// sequence. The yielded index is the record's position in the input.
func (e *Engine) EvaluateBatch(records iter.Seq[Record]) iter.Seq2[int, Result] {
	return func(yield func(int, Result) bool) {
		i := 0
		for rec := range records {
			if !yield(i, e.EvaluateOne(rec)) {
				return
			}
			i++
		}
	}
}

// EvaluateAll classifies a slice of records and returns one result per
// record, in input order.
func (e *Engine) EvaluateAll(records []Record) []Result {
	results := make([]Result, len(records))
	for i := range records {
		results[i] = e.EvaluateOne(records[i])
	}

	if e.config.Metrics != nil {
		e.config.Metrics.ObserveBatch(len(results))
	}

	return results
}

// Swap atomically replaces the active rule store and returns the
// previous one. Evaluations already running finish against the store
// they started with; a nil store is ignored.
func (e *Engine) Swap(st *store.Store) *store.Store {
	if st == nil {
		return e.store.Load()
	}

	old := e.store.Swap(st)

	e.logger.Info("rule store swapped",
		"rules", st.Len(),
		"source", st.Source(),
		"fingerprint", st.Fingerprint(),
		"previous_fingerprint", old.Fingerprint(),
	)

	return old
}

// Store returns the active rule store.
func (e *Engine) Store() *store.Store {
	return e.store.Load()
}

// evaluate scans the active store in priority order and builds the
// result, recording trace steps when tr is non-nil.
func (e *Engine) evaluate(rec Record, tr *Trace) Result {
	start := time.Now()
	st := e.store.Load()

	ruleSet := st.Rules()
	for i := range ruleSet {
		rule := &ruleSet[i]
		if !matchRule(rule, rec, tr) {
			continue
		}

		tr.add(rule.ID, "", OutcomeMatched)
		res := Result{
			Risk:    rule.Result.Risk,
			Action:  rule.Result.Action,
			RuleID:  rule.ID,
			Matched: true,
		}
		e.finish(res, start, tr)
		return res
	}

	tr.add(rules.NoRuleID, "", OutcomeDefault)
	res := Result{
		Risk:   e.config.DefaultResult.Risk,
		Action: e.config.DefaultResult.Action,
		RuleID: rules.NoRuleID,
	}
	e.finish(res, start, tr)
	return res
}

// finish records the elapsed time on the trace and reports the
// evaluation to the observer.
func (e *Engine) finish(res Result, start time.Time, tr *Trace) {
	elapsed := time.Since(start)
	if tr != nil {
		tr.Elapsed = elapsed
	}
	if e.config.Metrics != nil {
		e.config.Metrics.ObserveEvaluation(res, elapsed)
	}
}
