package main

import (
	"strings"
	"testing"

	"emberwatch/cinder/pkg/rules"
)

func TestLintRulesValidFile(t *testing.T) {
	// Set flags
	lintFlags.format = "text"
	lintFlags.strict = false

	// Run lint command
	err := lintRules(nil, []string{"testdata/valid-rules.json"})
	if err != nil {
		t.Errorf("lintRules() with valid file returned error: %v", err)
	}
}

func TestLintRulesInvalidFile(t *testing.T) {
	// Set flags
	lintFlags.format = "text"
	lintFlags.strict = false

	// Run lint command - should return error for invalid rules
	err := lintRules(nil, []string{"testdata/invalid-rules.json"})
	if err == nil {
		t.Error("lintRules() with invalid file should return error")
	}
}

func TestLintRulesNonexistentFile(t *testing.T) {
	// Set flags
	lintFlags.format = "text"
	lintFlags.strict = false

	// Run lint command - should return error
	err := lintRules(nil, []string{"testdata/nonexistent.json"})
	if err == nil {
		t.Error("lintRules() with nonexistent file should return error")
	}
}

func TestLintRulesJSONFormat(t *testing.T) {
	// Set flags
	lintFlags.format = "json"
	lintFlags.strict = false

	// Run lint command
	err := lintRules(nil, []string{"testdata/valid-rules.json"})
	if err != nil {
		t.Errorf("lintRules() with JSON format returned error: %v", err)
	}
}

func TestLintRulesUnknownFormat(t *testing.T) {
	// Set flags - csv is a classify format, not a lint format
	lintFlags.format = "csv"
	lintFlags.strict = false

	// Run lint command - should return error
	err := lintRules(nil, []string{"testdata/valid-rules.json"})
	if err == nil {
		t.Error("lintRules() with csv format should return error")
	}

	lintFlags.format = "text"
}

func TestLintRulesStrictPromotesWarnings(t *testing.T) {
	// The overlapping fixture is structurally valid but carries
	// warnings (shared priority, unreferenced feed fields).
	lintFlags.format = "text"
	lintFlags.strict = false

	if err := lintRules(nil, []string{"testdata/overlapping-rules.json"}); err != nil {
		t.Errorf("lintRules() without strict returned error: %v", err)
	}

	lintFlags.strict = true
	if err := lintRules(nil, []string{"testdata/overlapping-rules.json"}); err == nil {
		t.Error("lintRules() with strict should fail on warnings")
	}
	lintFlags.strict = false
}

func TestLintRulesMixedFiles(t *testing.T) {
	// One bad file fails the whole invocation even when others pass.
	lintFlags.format = "text"
	lintFlags.strict = false

	err := lintRules(nil, []string{"testdata/valid-rules.json", "testdata/invalid-rules.json"})
	if err == nil {
		t.Error("lintRules() with a mix of valid and invalid files should return error")
	}
}

func TestLintFile(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		wantValid    bool
		wantWarnings bool
	}{
		{
			name:      "valid rules",
			file:      "testdata/valid-rules.json",
			wantValid: true,
		},
		{
			name:      "invalid rules",
			file:      "testdata/invalid-rules.json",
			wantValid: false,
		},
		{
			name:      "nonexistent file",
			file:      "testdata/nonexistent.json",
			wantValid: false,
		},
		{
			name:         "valid rules with warnings",
			file:         "testdata/overlapping-rules.json",
			wantValid:    true,
			wantWarnings: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := lintFile(tt.file)
			if result.Valid != tt.wantValid {
				t.Errorf("lintFile(%q).Valid = %v, want %v",
					tt.file, result.Valid, tt.wantValid)
			}
			if tt.wantWarnings && len(result.Warnings) == 0 {
				t.Errorf("lintFile(%q) expected warnings, got none", tt.file)
			}
			if !tt.wantValid && len(result.Errors) == 0 {
				t.Errorf("lintFile(%q) invalid but reported no errors", tt.file)
			}
		})
	}
}

func TestFeedWarnings(t *testing.T) {
	ruleSet := []rules.Rule{
		{
			ID:       "A",
			Priority: 2,
			Conditions: []rules.Condition{
				{Field: "temp", Operator: rules.OperatorGreaterThan, Value: 38.0},
			},
			Result: rules.Result{Risk: "HIGH", Action: "act"},
		},
		{
			ID:       "B",
			Priority: 2,
			Conditions: []rules.Condition{
				{Field: "temp", Operator: rules.OperatorGreaterThan, Value: 35.0},
			},
			Result: rules.Result{Risk: "MEDIUM", Action: "act"},
		},
	}

	warnings := feedWarnings(ruleSet)

	// One shared priority plus three canonical fields no rule touches
	// (hum, wind, event_type).
	if len(warnings) != 4 {
		t.Fatalf("feedWarnings() returned %d warnings, want 4: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "share priority 2") {
		t.Errorf("first warning should flag the shared priority, got %q", warnings[0])
	}
	for _, field := range []string{"hum", "wind", "event_type"} {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, field) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("feedWarnings() missing unreferenced-field warning for %q", field)
		}
	}
}

func TestFeedWarningsCleanSet(t *testing.T) {
	ruleSet := []rules.Rule{
		{
			ID:       "ALL_FIELDS",
			Priority: 1,
			Conditions: []rules.Condition{
				{Field: "temp", Operator: rules.OperatorGreaterThan, Value: 40.0},
				{Field: "hum", Operator: rules.OperatorLessThan, Value: 20.0},
				{Field: "wind", Operator: rules.OperatorGreaterThan, Value: 40.0},
				{Field: "event_type", Operator: rules.OperatorEqual, Value: "raio_seco"},
			},
			Result: rules.Result{Risk: "CRITICAL", Action: "act"},
		},
	}

	if warnings := feedWarnings(ruleSet); len(warnings) != 0 {
		t.Errorf("feedWarnings() on a clean set returned %v", warnings)
	}
}
