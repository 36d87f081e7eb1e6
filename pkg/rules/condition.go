package rules

import "fmt"

// Condition represents one atomic comparison within a rule: a record
// field, an operator, and an operand value.
type Condition struct {
	Field    string      // record attribute to read
	Operator Operator    // one of the six comparison symbols
	Value    interface{} // operand, numeric or string
	Kind     ValueKind   // operand kind, resolved at load time

	// match is the compiled predicate set by Compile. It closes over the
	// operator and operand.
	match func(interface{}) bool
}

// Compile resolves the condition's operator and operand into a direct
// predicate function. It must be called after validation; it returns an
// error for unrecognized operators, operands with no value kind, and
// ordering operators applied to string operands.
func (c *Condition) Compile() error {
	if c.Kind == "" {
		kind, ok := KindOf(c.Value)
		if !ok {
			return fmt.Errorf("condition on field %q: unsupported value type %T", c.Field, c.Value)
		}
		c.Kind = kind
	}

	p, err := predicateFor(c.Operator, c.Kind, c.Value)
	if err != nil {
		return fmt.Errorf("condition on field %q: %w", c.Field, err)
	}
	c.match = p
	return nil
}

// Compiled returns true once Compile has resolved the predicate.
func (c *Condition) Compiled() bool {
	return c.match != nil
}

// Match reports whether a record value satisfies the condition. A value
// whose runtime kind does not match the operand kind fails the condition;
// Match never returns an error. Uncompiled conditions resolve their
// predicate on the fly.
func (c *Condition) Match(v interface{}) bool {
	if c.match != nil {
		return c.match(v)
	}
	kind := c.Kind
	if kind == "" {
		k, ok := KindOf(c.Value)
		if !ok {
			return false
		}
		kind = k
	}
	p, err := predicateFor(c.Operator, kind, c.Value)
	if err != nil {
		return false
	}
	return p(v)
}

// predicateFor builds the comparison predicate for an operator, operand
// kind, and operand value.
func predicateFor(op Operator, kind ValueKind, operand interface{}) (func(interface{}) bool, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unrecognized operator %q", op)
	}

	switch kind {
	case KindNumber:
		expected, ok := Numeric(operand)
		if !ok {
			return nil, fmt.Errorf("operand %v is not numeric", operand)
		}
		return func(v interface{}) bool {
			actual, ok := Numeric(v)
			if !ok {
				return false
			}
			return compareNumbers(op, actual, expected)
		}, nil

	case KindString:
		if op.Ordering() {
			return nil, fmt.Errorf("operator %q requires a numeric operand", op)
		}
		expected, ok := operand.(string)
		if !ok {
			return nil, fmt.Errorf("operand %v is not a string", operand)
		}
		return func(v interface{}) bool {
			actual, ok := v.(string)
			if !ok {
				return false
			}
			return compareStrings(op, actual, expected)
		}, nil

	default:
		return nil, fmt.Errorf("unsupported operand kind %q", kind)
	}
}
