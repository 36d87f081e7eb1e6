// Package validator checks decoded rules for structural correctness.
//
// Validation runs between decoding and store construction. It accumulates
// every violation rather than stopping at the first, so linting can report
// the full state of a rule set in one pass. Violations are
// rules.InvalidRuleError values: missing required fields, unrecognized
// operators, unsupported operand types, and ordering operators applied to
// string operands.
//
// Warnings cover constructs that are legal but suspicious: duplicate rule
// ids, rules with an empty condition list (they match every record), and
// empty rule sets. Warnings never fail validation; the lint command
// promotes them to failures under --strict.
package validator
