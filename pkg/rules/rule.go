package rules

// Default result values returned when no rule matches a record.
// The sentinel rule ID distinguishes the fail-open default from a rule
// that happens to produce the same risk label.
const (
	DefaultRisk   = "NORMAL"
	DefaultAction = "routine monitoring"
	NoRuleID      = "NO_RULE"
)

// Rule represents a single classification rule.
// Rules are evaluated in ascending priority order, and the first rule
// whose entire condition list holds determines the outcome.
type Rule struct {
	ID          string      // rule identifier; duplicates are legal but discouraged
	Priority    int         // lower value = evaluated earlier; negatives and ties are legal
	Description string      // human-readable description, no semantic effect
	Conditions  []Condition // all must hold (logical AND); empty list always matches
	Result      Result      // payload returned verbatim when the rule fires
}

// Result is the payload a matching rule returns: a risk label and a
// recommended action, both opaque to the engine.
type Result struct {
	Risk   string
	Action string
}

// HasConditions returns true if the rule has at least one condition.
// A rule without conditions matches every record.
func (r *Rule) HasConditions() bool {
	return len(r.Conditions) > 0
}

// Compile resolves every condition's predicate. It returns the first
// compilation error, naming the rule.
func (r *Rule) Compile() error {
	for i := range r.Conditions {
		if err := r.Conditions[i].Compile(); err != nil {
			return &InvalidRuleError{
				RuleID: r.ID,
				Index:  -1,
				Field:  conditionPath(i, ""),
				Reason: err.Error(),
			}
		}
	}
	return nil
}
