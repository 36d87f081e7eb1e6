package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emberwatch/cinder/pkg/rules"
)

const sampleJSON = `[
  {"id": "FIRE_CRITICAL_01", "priority": 1, "description": "temp > 40 and hum < 20",
   "conditions": [
     {"field": "temp", "operator": ">", "value": 40},
     {"field": "hum", "operator": "<", "value": 20}
   ],
   "result": {"risk": "CRITICAL", "action": "Immediate mobilization"}},
  {"id": "FIRE_HIGH_01", "priority": 2, "description": "dry lightning event",
   "conditions": [
     {"field": "event_type", "operator": "==", "value": "raio_seco"}
   ],
   "result": {"risk": "HIGH", "action": "Dispatch patrol"}}
]`

const sampleYAML = `rules:
  - id: FIRE_MEDIUM_01
    priority: 3
    description: sustained heat
    conditions:
      - field: temp
        operator: ">"
        value: 35
    result:
      risk: MEDIUM
      action: Issue public advisory
`

const sampleYAMLSequence = `- id: FIRE_LOW_01
  priority: 4
  conditions:
    - field: wind
      operator: ">"
      value: 40
  result:
    risk: LOW
    action: Monitor
`

// TestParseJSON tests decoding of the canonical JSON form
func TestParseJSON(t *testing.T) {
	parsed, err := ParseJSON([]byte(sampleJSON), "rules.json")
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("ParseJSON() returned %d rules, want 2", len(parsed))
	}

	first := parsed[0]
	if first.ID != "FIRE_CRITICAL_01" {
		t.Errorf("rule ID = %q, want %q", first.ID, "FIRE_CRITICAL_01")
	}
	if first.Priority != 1 {
		t.Errorf("rule priority = %d, want 1", first.Priority)
	}
	if len(first.Conditions) != 2 {
		t.Fatalf("rule has %d conditions, want 2", len(first.Conditions))
	}
	if first.Conditions[0].Kind != rules.KindNumber {
		t.Errorf("condition kind = %q, want %q", first.Conditions[0].Kind, rules.KindNumber)
	}
	if v, ok := first.Conditions[0].Value.(float64); !ok || v != 40 {
		t.Errorf("condition value = %v (%T), want float64(40)", first.Conditions[0].Value, first.Conditions[0].Value)
	}
	if first.Result.Risk != "CRITICAL" || first.Result.Action != "Immediate mobilization" {
		t.Errorf("rule result = %+v, want CRITICAL/Immediate mobilization", first.Result)
	}

	second := parsed[1]
	if second.Conditions[0].Kind != rules.KindString {
		t.Errorf("string condition kind = %q, want %q", second.Conditions[0].Kind, rules.KindString)
	}
}

// TestParseYAML tests both YAML document shapes
func TestParseYAML(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{name: "keyed document", input: sampleYAML, wantID: "FIRE_MEDIUM_01"},
		{name: "bare sequence", input: sampleYAMLSequence, wantID: "FIRE_LOW_01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseYAML([]byte(tt.input), "rules.yaml")
			if err != nil {
				t.Fatalf("ParseYAML() error = %v", err)
			}
			if len(parsed) != 1 {
				t.Fatalf("ParseYAML() returned %d rules, want 1", len(parsed))
			}
			if parsed[0].ID != tt.wantID {
				t.Errorf("rule ID = %q, want %q", parsed[0].ID, tt.wantID)
			}

			// YAML whole numbers arrive as int and must normalize to float64.
			v := parsed[0].Conditions[0].Value
			if _, ok := v.(float64); !ok {
				t.Errorf("condition value type = %T, want float64", v)
			}
		})
	}
}

// TestParseYAMLEmptyDocument tests that an empty document yields no rules
func TestParseYAMLEmptyDocument(t *testing.T) {
	parsed, err := ParseYAML([]byte(""), "empty.yaml")
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if len(parsed) != 0 {
		t.Errorf("ParseYAML() returned %d rules, want 0", len(parsed))
	}
}

// TestParseMalformed tests error mapping for undecodable documents
func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{name: "truncated json", format: FormatJSON, input: `[{"id": "A", "priority":`},
		{name: "json object instead of array", format: FormatJSON, input: `{"id": "A"}`},
		{name: "yaml tab indentation", format: FormatYAML, input: "rules:\n\t- id: A"},
		{name: "yaml scalar document", format: FormatYAML, input: `just a string`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "bad-source", tt.format)
			if err == nil {
				t.Fatal("Parse() error = nil, want MalformedSourceError")
			}
			var malformed *rules.MalformedSourceError
			if !errors.As(err, &malformed) {
				t.Fatalf("Parse() error type = %T, want *MalformedSourceError", err)
			}
			if malformed.Source != "bad-source" {
				t.Errorf("MalformedSourceError.Source = %q, want %q", malformed.Source, "bad-source")
			}
		})
	}
}

// TestParseMissingPriority tests that absent priority is a load error, not priority zero
func TestParseMissingPriority(t *testing.T) {
	input := `[{"id": "NO_PRIORITY", "conditions": [], "result": {"risk": "LOW", "action": "Monitor"}}]`

	_, err := ParseJSON([]byte(input), "rules.json")
	if err == nil {
		t.Fatal("ParseJSON() error = nil, want InvalidRuleError")
	}

	var invalid *rules.InvalidRuleError
	if !errors.As(err, &invalid) {
		t.Fatalf("ParseJSON() error type = %T, want *InvalidRuleError", err)
	}
	if invalid.RuleID != "NO_PRIORITY" {
		t.Errorf("InvalidRuleError.RuleID = %q, want %q", invalid.RuleID, "NO_PRIORITY")
	}
	if invalid.Field != "priority" {
		t.Errorf("InvalidRuleError.Field = %q, want %q", invalid.Field, "priority")
	}
}

// TestParseExplicitZeroPriority tests that priority 0 is preserved, not treated as missing
func TestParseExplicitZeroPriority(t *testing.T) {
	input := `[{"id": "ZERO", "priority": 0, "conditions": [], "result": {"risk": "LOW", "action": "Monitor"}}]`

	parsed, err := ParseJSON([]byte(input), "rules.json")
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if parsed[0].Priority != 0 {
		t.Errorf("rule priority = %d, want 0", parsed[0].Priority)
	}
}

// TestParseConditionPresence tests nil-vs-empty handling for the conditions list
func TestParseConditionPresence(t *testing.T) {
	input := `[
	  {"id": "EMPTY", "priority": 1, "conditions": [], "result": {"risk": "LOW", "action": "Monitor"}},
	  {"id": "ABSENT", "priority": 2, "result": {"risk": "LOW", "action": "Monitor"}}
	]`

	parsed, err := ParseJSON([]byte(input), "rules.json")
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}

	if parsed[0].Conditions == nil {
		t.Error("explicit empty conditions decoded as nil, want empty slice")
	}
	if parsed[1].Conditions != nil {
		t.Error("absent conditions decoded as non-nil slice, want nil")
	}
}

// TestParseFile tests file loading and the not-found error mapping
func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "rules.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("ParseFile() returned %d rules, want 2", len(parsed))
	}

	_, err = ParseFile(filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Fatal("ParseFile() error = nil for missing file, want SourceNotFoundError")
	}
	var notFound *rules.SourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("ParseFile() error type = %T, want *SourceNotFoundError", err)
	}
}

// TestFormatForPath tests extension-based format selection
func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{path: "rules.json", want: FormatJSON},
		{path: "rules.yaml", want: FormatYAML},
		{path: "rules.YML", want: FormatYAML},
		{path: "regras", want: FormatJSON},
		{path: "dir/pack.yml", want: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatForPath(tt.path); got != tt.want {
				t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
