package rules

import (
	"fmt"
	"strings"
)

// SourceNotFoundError indicates that a rule source does not exist.
// It is fatal to rule-set construction: the engine never starts with a
// silently empty rule list.
type SourceNotFoundError struct {
	// Source names the missing source (file path, directory, repository URL)
	Source string

	// Err is the underlying error, typically from the filesystem
	Err error
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule source %q not found: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("rule source %q not found", e.Source)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// MalformedSourceError indicates that a rule source exists but is not
// parseable as the expected structured format.
type MalformedSourceError struct {
	// Source names the unparseable source
	Source string

	// Format is the format that was expected ("json" or "yaml")
	Format string

	// Err is the underlying decode error
	Err error
}

// Error implements the error interface.
func (e *MalformedSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule source %q is not valid %s: %v", e.Source, e.Format, e.Err)
	}
	return fmt.Sprintf("rule source %q is not valid %s", e.Source, e.Format)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// InvalidRuleError indicates that a decoded rule is structurally
// incomplete (missing required field) or uses an unrecognized operator.
// It names the offending rule so the operator can fix the rule set.
type InvalidRuleError struct {
	// RuleID is the id of the offending rule; empty when the id itself
	// is the missing field
	RuleID string

	// Index is the zero-based position of the rule in the source,
	// or -1 when unknown
	Index int

	// Field is the offending field path, e.g. "conditions[0].operator"
	Field string

	// Reason describes what is wrong
	Reason string
}

// Error implements the error interface.
func (e *InvalidRuleError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid rule")
	if e.RuleID != "" {
		fmt.Fprintf(&sb, " %q", e.RuleID)
	} else if e.Index >= 0 {
		fmt.Fprintf(&sb, " at index %d", e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, ": %s", e.Field)
	}
	fmt.Fprintf(&sb, ": %s", e.Reason)
	return sb.String()
}

// ErrorList accumulates multiple validation errors so linting can report
// every problem in a rule set, not just the first.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %v\n", i+1, err)
	}
	return sb.String()
}

// Add appends a non-nil error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil for an empty list, the sole error for a
// single-element list, and the list itself otherwise.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}

// conditionPath builds the field path for a condition error,
// e.g. conditionPath(2, "operator") == "conditions[2].operator".
func conditionPath(i int, field string) string {
	if field == "" {
		return fmt.Sprintf("conditions[%d]", i)
	}
	return fmt.Sprintf("conditions[%d].%s", i, field)
}
