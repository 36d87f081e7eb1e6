package rules

// ValueKind represents the comparison type of a condition operand,
// resolved once at load time. There is no automatic cross-kind coercion:
// a record value whose runtime kind differs from the operand kind fails
// the condition.
type ValueKind string

const (
	KindNumber ValueKind = "number"
	KindString ValueKind = "string"
)

// KindOf reports the value kind of a condition operand. All numeric Go
// types (JSON decodes to float64, YAML to int or float64) map to
// KindNumber. Booleans, nil, and composite values have no kind and are
// rejected by validation.
func KindOf(v interface{}) (ValueKind, bool) {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber, true
	case string:
		return KindString, true
	default:
		return "", false
	}
}

// Numeric converts a value to float64 for numeric comparison.
// Strings are never parsed: "42" is not the number 42.
func Numeric(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
