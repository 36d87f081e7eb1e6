package store

import (
	"context"
	"errors"
	"testing"

	"emberwatch/cinder/pkg/rules"
)

func testRule(id string, priority int, conds ...rules.Condition) rules.Rule {
	if conds == nil {
		conds = []rules.Condition{}
	}
	return rules.Rule{
		ID:         id,
		Priority:   priority,
		Conditions: conds,
		Result:     rules.Result{Risk: "HIGH", Action: "Dispatch patrol"},
	}
}

// TestLoadOrdersByPriority tests ascending order with stable tie-breaking
func TestLoadOrdersByPriority(t *testing.T) {
	src := NewMemorySource("test", []rules.Rule{
		testRule("P2_FIRST", 2),
		testRule("P1_FIRST", 1),
		testRule("P2_SECOND", 2),
		testRule("P1_SECOND", 1),
		testRule("NEGATIVE", -3),
	})

	st, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"NEGATIVE", "P1_FIRST", "P1_SECOND", "P2_FIRST", "P2_SECOND"}
	got := st.Rules()
	if len(got) != len(want) {
		t.Fatalf("Load() returned %d rules, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("rules[%d].ID = %q, want %q (stable ascending order)", i, got[i].ID, id)
		}
	}
}

// TestLoadCompilesConditions tests that loaded rules carry resolved predicates
func TestLoadCompilesConditions(t *testing.T) {
	src := NewMemorySource("test", []rules.Rule{
		testRule("FIRE_CRITICAL_01", 1,
			rules.Condition{Field: "temp", Operator: rules.OperatorGreaterThan, Value: float64(40)},
			rules.Condition{Field: "hum", Operator: rules.OperatorLessThan, Value: float64(20)},
		),
	})

	st, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, cond := range st.Rules()[0].Conditions {
		if !cond.Compiled() {
			t.Errorf("condition on %q not compiled after Load()", cond.Field)
		}
	}
}

// TestLoadRejectsInvalidRules tests fail-fast validation during load
func TestLoadRejectsInvalidRules(t *testing.T) {
	src := NewMemorySource("test", []rules.Rule{
		testRule("OK", 1),
		{
			ID:       "BROKEN_OPERATOR",
			Priority: 2,
			Conditions: []rules.Condition{
				{Field: "temp", Operator: rules.Operator("between"), Value: float64(40)},
			},
			Result: rules.Result{Risk: "HIGH", Action: "Dispatch patrol"},
		},
	})

	_, err := Load(context.Background(), src)
	if err == nil {
		t.Fatal("Load() error = nil, want InvalidRuleError")
	}

	var invalid *rules.InvalidRuleError
	if !errors.As(err, &invalid) {
		t.Fatalf("Load() error type = %T, want *InvalidRuleError", err)
	}
	if invalid.RuleID != "BROKEN_OPERATOR" {
		t.Errorf("InvalidRuleError.RuleID = %q, want %q", invalid.RuleID, "BROKEN_OPERATOR")
	}
}

// TestLoadOwnsItsRules tests that mutating source rules cannot reach the store
func TestLoadOwnsItsRules(t *testing.T) {
	input := []rules.Rule{
		testRule("FIRE_HIGH_01", 1,
			rules.Condition{Field: "event_type", Operator: rules.OperatorEqual, Value: "raio_seco"},
		),
	}
	src := NewMemorySource("test", input)

	st, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	input[0].Conditions[0].Value = "tampered"
	input[0].Priority = 99

	got := st.Rules()[0]
	if got.Priority != 1 {
		t.Errorf("store priority = %d after caller mutation, want 1", got.Priority)
	}
	if got.Conditions[0].Value != "raio_seco" {
		t.Errorf("store condition value = %v after caller mutation, want %q", got.Conditions[0].Value, "raio_seco")
	}
}

// TestLoadEmptySource tests that a genuinely empty source loads an empty store
func TestLoadEmptySource(t *testing.T) {
	st, err := Load(context.Background(), NewMemorySource("empty", nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

// TestFingerprint tests content-based change detection
func TestFingerprint(t *testing.T) {
	ruleSet := []rules.Rule{
		testRule("A", 1, rules.Condition{Field: "temp", Operator: rules.OperatorGreaterThan, Value: float64(40)}),
	}

	first, err := Load(context.Background(), NewMemorySource("a", ruleSet))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := Load(context.Background(), NewMemorySource("b", ruleSet))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Fingerprint() == "" {
		t.Fatal("Fingerprint() is empty")
	}
	if first.Fingerprint() != second.Fingerprint() {
		t.Error("equal content produced different fingerprints")
	}

	changed := []rules.Rule{
		testRule("A", 1, rules.Condition{Field: "temp", Operator: rules.OperatorGreaterThan, Value: float64(41)}),
	}
	third, err := Load(context.Background(), NewMemorySource("c", changed))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Fingerprint() == third.Fingerprint() {
		t.Error("different content produced equal fingerprints")
	}
}

// TestStoreMetadata tests source naming and load timestamps
func TestStoreMetadata(t *testing.T) {
	st, err := Load(context.Background(), NewMemorySource("starter-pack", []rules.Rule{testRule("A", 1)}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Source() != "starter-pack" {
		t.Errorf("Source() = %q, want %q", st.Source(), "starter-pack")
	}
	if st.LoadedAt().IsZero() {
		t.Error("LoadedAt() is zero")
	}
}
