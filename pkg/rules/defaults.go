package rules

// Defaults returns the built-in wildfire starter rules. They encode
// the policy the system shipped with: extreme heat over dry air is
// critical, dry lightning and hot-dry spells call for patrols, and
// heat or wind alone warrant the lower grades.
//
// The two priority-2 rules are ordered deliberately. Loading keeps
// source order on a priority tie, so a dry lightning strike wins over
// a plain hot-dry reading when a record trips both.
func Defaults() []Rule {
	return []Rule{
		{
			ID:          "HEAT_CRITICAL_01",
			Priority:    1,
			Description: "temperature above 40 with humidity below 20",
			Conditions: []Condition{
				{Field: "temp", Operator: OperatorGreaterThan, Value: 40.0},
				{Field: "hum", Operator: OperatorLessThan, Value: 20.0},
			},
			Result: Result{Risk: "CRITICAL", Action: "Immediate mobilization."},
		},
		{
			ID:          "DRY_LIGHTNING_01",
			Priority:    2,
			Description: "dry lightning strike reported",
			Conditions: []Condition{
				{Field: "event_type", Operator: OperatorEqual, Value: "raio_seco"},
			},
			Result: Result{Risk: "HIGH", Action: "Dispatch patrol."},
		},
		{
			ID:          "HEAT_HIGH_01",
			Priority:    2,
			Description: "temperature above 38 with humidity below 30",
			Conditions: []Condition{
				{Field: "temp", Operator: OperatorGreaterThan, Value: 38.0},
				{Field: "hum", Operator: OperatorLessThan, Value: 30.0},
			},
			Result: Result{Risk: "HIGH", Action: "Reinforce surveillance."},
		},
		{
			ID:          "HEAT_MEDIUM_01",
			Priority:    3,
			Description: "temperature above 35",
			Conditions: []Condition{
				{Field: "temp", Operator: OperatorGreaterThan, Value: 35.0},
			},
			Result: Result{Risk: "MEDIUM", Action: "Warn the population."},
		},
		{
			ID:          "WIND_LOW_01",
			Priority:    4,
			Description: "wind above 40 km/h",
			Conditions: []Condition{
				{Field: "wind", Operator: OperatorGreaterThan, Value: 40.0},
			},
			Result: Result{Risk: "LOW", Action: "Monitor."},
		},
	}
}
