// Package rules defines the rule data model for the Cinder classification engine.
//
// A rule set is an ordered collection of prioritized decision units. Each Rule
// carries an identifier, an integer priority (lower value = evaluated earlier),
// a list of Conditions combined with logical AND, and a Result payload returned
// verbatim when the rule fires.
//
// # Core Types
//
// Rule: named, prioritized decision unit with conditions and a result payload
//
// Condition: single field/operator/value comparison within a rule
//
// Operator: closed set of six comparison symbols (>, <, ==, !=, >=, <=)
//
// ValueKind: load-time tag for condition operands (number or string)
//
// Result: (risk, action) pair returned when a rule matches
//
// # Operand Typing
//
// Condition operands are untyped in source documents. At load time each operand
// is tagged with a ValueKind and the operator is resolved into a direct predicate
// function, so evaluation never dispatches on operator strings. Ordering operators
// are defined only for numeric operands; equality operators compare numerically
// when the operand is numeric and as plain strings otherwise. A record value whose
// runtime kind does not match the operand kind fails the condition rather than
// raising an error.
//
// # Error Taxonomy
//
// Loading distinguishes three failure kinds, all fatal to rule-set construction:
//
//	SourceNotFoundError   the rule source does not exist
//	MalformedSourceError  the source exists but cannot be decoded
//	InvalidRuleError      a decoded rule is structurally incomplete or uses an
//	                      unrecognized operator; names the offending rule
//
// There is no evaluation-time error kind: conditions over missing or mistyped
// record fields simply fail to match.
package rules
