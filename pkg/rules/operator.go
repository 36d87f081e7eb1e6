package rules

// Operator represents a comparison operator in a rule condition.
// The set is closed: exactly six symbols are recognized, and anything
// else is rejected at load time.
type Operator string

const (
	OperatorGreaterThan  Operator = ">"
	OperatorLessThan     Operator = "<"
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorGreaterEqual Operator = ">="
	OperatorLessEqual    Operator = "<="
)

// Operators returns the recognized operators in a stable order,
// suitable for error messages and documentation.
func Operators() []Operator {
	return []Operator{
		OperatorGreaterThan,
		OperatorLessThan,
		OperatorEqual,
		OperatorNotEqual,
		OperatorGreaterEqual,
		OperatorLessEqual,
	}
}

// Valid returns true if the operator is one of the six recognized symbols.
func (o Operator) Valid() bool {
	switch o {
	case OperatorGreaterThan, OperatorLessThan, OperatorEqual,
		OperatorNotEqual, OperatorGreaterEqual, OperatorLessEqual:
		return true
	default:
		return false
	}
}

// Ordering returns true if the operator imposes a numeric ordering
// (>, <, >=, <=). Ordering operators are defined only for numeric operands.
func (o Operator) Ordering() bool {
	switch o {
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterEqual, OperatorLessEqual:
		return true
	default:
		return false
	}
}

// compareNumbers applies the operator to two float64 operands.
func compareNumbers(op Operator, actual, expected float64) bool {
	switch op {
	case OperatorGreaterThan:
		return actual > expected
	case OperatorLessThan:
		return actual < expected
	case OperatorEqual:
		return actual == expected
	case OperatorNotEqual:
		return actual != expected
	case OperatorGreaterEqual:
		return actual >= expected
	case OperatorLessEqual:
		return actual <= expected
	default:
		return false
	}
}

// compareStrings applies an equality operator to two string operands.
// Ordering operators never reach here: validation rejects them for
// string operands.
func compareStrings(op Operator, actual, expected string) bool {
	switch op {
	case OperatorEqual:
		return actual == expected
	case OperatorNotEqual:
		return actual != expected
	default:
		return false
	}
}
