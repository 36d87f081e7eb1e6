package parser

import (
	"emberwatch/cinder/pkg/rules"
)

// documentRule is the intermediate wire structure shared by the JSON and
// YAML forms. Priority is a pointer so a missing field is distinguishable
// from an explicit zero: silently defaulting a rule to priority 0 would
// move it to the front of the evaluation order.
type documentRule struct {
	ID          string              `json:"id" yaml:"id"`
	Priority    *int                `json:"priority" yaml:"priority"`
	Description string              `json:"description" yaml:"description"`
	Conditions  []documentCondition `json:"conditions" yaml:"conditions"`
	Result      documentResult      `json:"result" yaml:"result"`
}

// documentCondition is the wire structure of one condition.
type documentCondition struct {
	Field    string      `json:"field" yaml:"field"`
	Operator string      `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value" yaml:"value"`
}

// documentResult is the wire structure of a rule's result payload.
type documentResult struct {
	Risk   string `json:"risk" yaml:"risk"`
	Action string `json:"action" yaml:"action"`
}

// yamlDocument wraps the rule list for the keyed YAML form.
type yamlDocument struct {
	Rules []documentRule `yaml:"rules"`
}

// convert transforms decoded wire rules into the rules data model,
// accumulating presence errors for fields whose absence is not
// representable after conversion.
func convert(doc []documentRule) ([]rules.Rule, error) {
	var errs rules.ErrorList
	out := make([]rules.Rule, 0, len(doc))

	for i, dr := range doc {
		if dr.Priority == nil {
			errs.Add(&rules.InvalidRuleError{
				RuleID: dr.ID,
				Index:  i,
				Field:  "priority",
				Reason: "missing required field",
			})
			continue
		}

		r := rules.Rule{
			ID:          dr.ID,
			Priority:    *dr.Priority,
			Description: dr.Description,
			Result: rules.Result{
				Risk:   dr.Result.Risk,
				Action: dr.Result.Action,
			},
		}

		if dr.Conditions != nil {
			r.Conditions = make([]rules.Condition, 0, len(dr.Conditions))
			for _, dc := range dr.Conditions {
				cond := rules.Condition{
					Field:    dc.Field,
					Operator: rules.Operator(dc.Operator),
					Value:    normalizeValue(dc.Value),
				}
				if kind, ok := rules.KindOf(cond.Value); ok {
					cond.Kind = kind
				}
				r.Conditions = append(r.Conditions, cond)
			}
		}

		out = append(out, r)
	}

	if errs.HasErrors() {
		return nil, errs.ToError()
	}
	return out, nil
}

// normalizeValue maps every numeric wire type to float64. YAML decodes
// whole numbers as int while JSON always produces float64; normalizing
// here keeps operand kinds independent of the source encoding.
func normalizeValue(v interface{}) interface{} {
	if n, ok := rules.Numeric(v); ok {
		return n
	}
	return v
}
