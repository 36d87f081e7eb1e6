package alerts

import (
	"slices"
	"testing"
	"time"
)

func TestGenerator(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Records = 60
	config.Seed = 7

	gen, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if gen.RunID() == "" {
		t.Errorf("RunID() is empty")
	}

	alertSet := gen.Generate()
	if len(alertSet) != 60 {
		t.Fatalf("Generate() produced %d alerts, want 60", len(alertSet))
	}

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	for i, alert := range alertSet {
		if want := start.Add(time.Duration(i) * 3 * time.Hour); !alert.Timestamp.Equal(want) {
			t.Fatalf("alert %d timestamp = %v, want %v", i, alert.Timestamp, want)
		}
		if !slices.Contains(DefaultZones, alert.Zone) {
			t.Errorf("alert %d zone = %q, not a known zone", i, alert.Zone)
		}

		temp := alert.Fields["temp"].(float64)
		hum := alert.Fields["hum"].(float64)
		wind := alert.Fields["wind"].(float64)
		if temp < 15 || temp > 50 {
			t.Errorf("alert %d temp = %v, outside [15, 50]", i, temp)
		}
		if hum < 10 || hum > 90 {
			t.Errorf("alert %d hum = %v, outside [10, 90]", i, hum)
		}
		if wind < 0 || wind > 80 {
			t.Errorf("alert %d wind = %v, outside [0, 80]", i, wind)
		}

		event := alert.Fields["event_type"].(string)
		switch event {
		case EventNone, EventCampfire, EventDryLightning:
		default:
			t.Errorf("alert %d event_type = %q, unknown value", i, event)
		}
	}
}

func TestGeneratorForcedExtremes(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Records = 45
	config.Seed = 1

	gen, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	alertSet := gen.Generate()

	for i, alert := range alertSet {
		if i%20 == 0 {
			if alert.Fields["temp"] != 42.0 || alert.Fields["hum"] != 18.0 {
				t.Errorf("alert %d = temp %v hum %v, want forced 42/18", i, alert.Fields["temp"], alert.Fields["hum"])
			}
		}
		if i%15 == 0 && alert.Fields["event_type"] != EventDryLightning {
			t.Errorf("alert %d event_type = %v, want forced %s", i, alert.Fields["event_type"], EventDryLightning)
		}
	}
}

func TestGeneratorDeterministicUnderSeed(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Records = 30
	config.Seed = 42

	first, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	second, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	a, b := first.Generate(), second.Generate()
	for i := range a {
		if a[i].Zone != b[i].Zone {
			t.Fatalf("alert %d zone differs between seeded runs", i)
		}
		for _, field := range CanonicalFields {
			if a[i].Fields[field] != b[i].Fields[field] {
				t.Fatalf("alert %d field %s differs between seeded runs", i, field)
			}
		}
	}

	if first.RunID() == second.RunID() {
		t.Errorf("run ids should differ between generators")
	}
}

func TestGeneratorConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{"zero records", func(c *GeneratorConfig) { c.Records = 0 }},
		{"negative records", func(c *GeneratorConfig) { c.Records = -5 }},
		{"zero interval", func(c *GeneratorConfig) { c.Interval = 0 }},
		{"no zones", func(c *GeneratorConfig) { c.Zones = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGeneratorConfig()
			tt.mutate(config)
			if _, err := NewGenerator(config); err == nil {
				t.Errorf("NewGenerator() expected error")
			}
		})
	}
}
