package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"emberwatch/cinder/pkg/rules"
)

// EncodeJSON writes a rule list in the canonical JSON document form,
// indented for hand editing. The output round-trips through ParseJSON.
func EncodeJSON(w io.Writer, ruleSet []rules.Rule) error {
	doc := toDocument(ruleSet)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rule document: %w", err)
	}
	return nil
}

// toDocument converts rules into the wire structure, the inverse of
// convert. Compiled predicates and resolved kinds are load-time state
// and do not appear on the wire.
func toDocument(ruleSet []rules.Rule) []documentRule {
	doc := make([]documentRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		priority := r.Priority
		dr := documentRule{
			ID:          r.ID,
			Priority:    &priority,
			Description: r.Description,
			Result: documentResult{
				Risk:   r.Result.Risk,
				Action: r.Result.Action,
			},
		}
		if r.Conditions != nil {
			dr.Conditions = make([]documentCondition, 0, len(r.Conditions))
			for _, c := range r.Conditions {
				dr.Conditions = append(dr.Conditions, documentCondition{
					Field:    c.Field,
					Operator: string(c.Operator),
					Value:    c.Value,
				})
			}
		}
		doc = append(doc, dr)
	}
	return doc
}
