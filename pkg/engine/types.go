package engine

import (
	"time"
)

// Record is a single alert reading presented for classification.
// The engine treats it as an opaque bag of fields: it reads the fields
// named by rule conditions and never mutates or retains the map.
type Record map[string]interface{}

// Result is the outcome of classifying one record.
type Result struct {
	// Risk is the risk label of the matched rule, or the configured
	// default label when no rule matched.
	Risk string

	// Action is the recommended action of the matched rule, or the
	// configured default action.
	Action string

	// RuleID identifies the rule that produced this result. It is the
	// NO_RULE sentinel for the default result, never empty.
	RuleID string

	// Matched reports whether any rule matched. It is false for the
	// default result even when a rule's labels coincide with the
	// default labels.
	Matched bool
}

// Outcome describes one step of an evaluation trace.
type Outcome string

const (
	// OutcomeHeld records a condition that was satisfied.
	OutcomeHeld Outcome = "condition held"

	// OutcomeFailed records a condition whose comparison was false.
	OutcomeFailed Outcome = "condition failed"

	// OutcomeMissingField records a condition whose field was absent
	// from the record.
	OutcomeMissingField Outcome = "missing field"

	// OutcomeKindMismatch records a condition whose record value had
	// the wrong kind for the operand (for example a string where the
	// operand is numeric).
	OutcomeKindMismatch Outcome = "kind mismatch"

	// OutcomeMatched records a rule whose entire condition list held.
	OutcomeMatched Outcome = "rule matched"

	// OutcomeDefault records that no rule matched and the default
	// result was returned.
	OutcomeDefault Outcome = "no rule matched"
)

// Trace records the steps of a single evaluation for explanation and
// debugging. It lists, in evaluation order, every condition that was
// actually inspected; conditions skipped by short-circuiting do not
// appear.
type Trace struct {
	// Steps contains the individual trace steps.
	Steps []TraceStep

	// Elapsed is the total evaluation time.
	Elapsed time.Duration
}

// TraceStep is a single step in an evaluation trace.
type TraceStep struct {
	// RuleID is the rule being evaluated.
	RuleID string

	// Field is the condition field inspected, empty for rule-level
	// steps.
	Field string

	// Outcome is what happened at this step.
	Outcome Outcome
}

// add appends a step. It is safe to call on a nil trace.
func (t *Trace) add(ruleID, field string, outcome Outcome) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{
		RuleID:  ruleID,
		Field:   field,
		Outcome: outcome,
	})
}

// Observer receives evaluation measurements. Implementations must be
// safe for concurrent use; the engine calls them from every evaluating
// goroutine.
type Observer interface {
	// ObserveEvaluation is called once per classified record.
	ObserveEvaluation(res Result, elapsed time.Duration)

	// ObserveBatch is called once per completed batch with its size.
	ObserveBatch(size int)
}
