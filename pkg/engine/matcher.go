package engine

import (
	"emberwatch/cinder/pkg/rules"
)

// matchRule reports whether every condition of the rule holds for the
// record. Conditions are checked in declared order and the first
// failure stops the scan. A missing field or a value of the wrong kind
// fails the condition; nothing a record contains can make evaluation
// error.
func matchRule(rule *rules.Rule, rec Record, tr *Trace) bool {
	for i := range rule.Conditions {
		cond := &rule.Conditions[i]

		actual, ok := rec[cond.Field]
		if !ok {
			tr.add(rule.ID, cond.Field, OutcomeMissingField)
			return false
		}

		if !cond.Match(actual) {
			if tr != nil {
				tr.add(rule.ID, cond.Field, failureOutcome(cond, actual))
			}
			return false
		}

		tr.add(rule.ID, cond.Field, OutcomeHeld)
	}
	return true
}

// failureOutcome names why a condition failed, for tracing only. The
// distinction has no effect on the result: a kind mismatch and an
// honest comparison miss both fail the condition.
func failureOutcome(cond *rules.Condition, actual interface{}) Outcome {
	kind, ok := rules.KindOf(actual)
	if !ok || kind != cond.Kind {
		return OutcomeKindMismatch
	}
	return OutcomeFailed
}
