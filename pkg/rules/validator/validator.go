package validator

import (
	"fmt"

	"emberwatch/cinder/pkg/rules"
)

// Validator checks the structural correctness of decoded rules:
// required fields present, operators recognized, operand kinds supported.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks every rule and accumulates all violations.
// It returns nil when the rule set is structurally sound.
func (v *Validator) Validate(ruleSet []rules.Rule) error {
	var errs rules.ErrorList
	for i := range ruleSet {
		v.validateRule(&errs, i, &ruleSet[i])
	}
	return errs.ToError()
}

// validateRule checks one rule's required fields and conditions.
func (v *Validator) validateRule(errs *rules.ErrorList, index int, r *rules.Rule) {
	if r.ID == "" {
		errs.Add(&rules.InvalidRuleError{
			Index:  index,
			Field:  "id",
			Reason: "missing required field",
		})
	}
	if r.Conditions == nil {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  "conditions",
			Reason: "missing required field",
		})
	}
	if r.Result.Risk == "" {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  "result.risk",
			Reason: "missing required field",
		})
	}
	if r.Result.Action == "" {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  "result.action",
			Reason: "missing required field",
		})
	}

	for j := range r.Conditions {
		v.validateCondition(errs, index, r, j, &r.Conditions[j])
	}
}

// validateCondition checks one condition's field, operator, and operand.
func (v *Validator) validateCondition(errs *rules.ErrorList, index int, r *rules.Rule, pos int, c *rules.Condition) {
	if c.Field == "" {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].field", pos),
			Reason: "missing required field",
		})
	}

	switch {
	case c.Operator == "":
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].operator", pos),
			Reason: "missing required field",
		})
	case !c.Operator.Valid():
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].operator", pos),
			Reason: fmt.Sprintf("unrecognized operator %q, expected one of %v", c.Operator, rules.Operators()),
		})
	}

	if c.Value == nil {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].value", pos),
			Reason: "missing required field",
		})
		return
	}

	kind, ok := rules.KindOf(c.Value)
	if !ok {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].value", pos),
			Reason: fmt.Sprintf("unsupported value type %T, expected number or string", c.Value),
		})
		return
	}

	if c.Operator.Valid() && c.Operator.Ordering() && kind == rules.KindString {
		errs.Add(&rules.InvalidRuleError{
			RuleID: r.ID,
			Index:  index,
			Field:  fmt.Sprintf("conditions[%d].value", pos),
			Reason: fmt.Sprintf("ordering operator %q requires a numeric value", c.Operator),
		})
	}
}

// Warning flags a construct that is legal but suspicious. Warnings never
// invalidate a rule set.
type Warning struct {
	// RuleID names the rule the warning refers to; empty for set-level warnings
	RuleID string

	// Message describes the finding
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.RuleID != "" {
		return fmt.Sprintf("rule %q: %s", w.RuleID, w.Message)
	}
	return w.Message
}

// Warnings reports lint findings on a structurally valid rule set.
func (v *Validator) Warnings(ruleSet []rules.Rule) []Warning {
	var warnings []Warning

	if len(ruleSet) == 0 {
		warnings = append(warnings, Warning{
			Message: "rule set is empty; every record will classify to the default result",
		})
		return warnings
	}

	seen := make(map[string]int, len(ruleSet))
	for i := range ruleSet {
		r := &ruleSet[i]

		if first, ok := seen[r.ID]; ok {
			warnings = append(warnings, Warning{
				RuleID:  r.ID,
				Message: fmt.Sprintf("duplicate rule id (also declared at index %d)", first),
			})
		} else {
			seen[r.ID] = i
		}

		if r.Conditions != nil && len(r.Conditions) == 0 {
			warnings = append(warnings, Warning{
				RuleID:  r.ID,
				Message: "empty condition list matches every record; rules after it can never fire",
			})
		}
	}

	return warnings
}
