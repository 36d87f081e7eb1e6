package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/engine"
)

const blockTime = "2006-01-02 15:04"

// RenderText writes the human-readable report: per-risk counts
// followed by one block per actionable alert, most urgent first.
func RenderText(w io.Writer, r *Report) error {
	summary := r.Summary()

	fmt.Fprintf(w, "Classified %d alerts\n\n", summary.Total)
	fmt.Fprintln(w, "Risk summary:")

	labels := riskLabels(summary.ByRisk)
	width := 0
	for _, label := range labels {
		if len(label) > width {
			width = len(label)
		}
	}
	for _, label := range labels {
		fmt.Fprintf(w, "  %-*s %d\n", width, label, summary.ByRisk[label])
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintln(w, "     RECOMMENDED ACTION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	actionable := r.Actionable()
	if len(actionable) == 0 {
		fmt.Fprintf(w, "\nNo alerts above %s: nothing requires action.\n", r.NormalLabel)
		return nil
	}

	fmt.Fprintf(w, "\nDetected %d alerts requiring action:\n", len(actionable))
	for i := range actionable {
		c := &actionable[i]
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 30))
		if !c.Alert.Timestamp.IsZero() {
			fmt.Fprintf(w, "  Time:   %s\n", c.Alert.Timestamp.Format(blockTime))
		}
		if c.Alert.Zone != "" {
			fmt.Fprintf(w, "  Zone:   %s\n", c.Alert.Zone)
		}
		fmt.Fprintf(w, "  RISK:   %s (rule %s)\n", c.Result.Risk, c.Result.RuleID)
		if line := fieldsLine(c.Alert.Fields); line != "" {
			fmt.Fprintf(w, "  Fields: %s\n", line)
		}
		fmt.Fprintf(w, "  ACTION: %s\n", c.Result.Action)
	}

	return nil
}

// jsonClassification is the wire shape of one actionable alert.
type jsonClassification struct {
	Timestamp string        `json:"timestamp,omitempty"`
	Zone      string        `json:"zone,omitempty"`
	Risk      string        `json:"risk"`
	Action    string        `json:"action"`
	RuleID    string        `json:"rule_id"`
	Matched   bool          `json:"matched"`
	Fields    engine.Record `json:"fields,omitempty"`
}

// RenderJSON writes the summary and the actionable set as indented
// JSON.
func RenderJSON(w io.Writer, r *Report) error {
	actionable := r.Actionable()
	out := struct {
		Summary    Summary              `json:"summary"`
		Actionable []jsonClassification `json:"actionable"`
	}{
		Summary:    r.Summary(),
		Actionable: make([]jsonClassification, 0, len(actionable)),
	}

	for i := range actionable {
		c := &actionable[i]
		jc := jsonClassification{
			Zone:    c.Alert.Zone,
			Risk:    c.Result.Risk,
			Action:  c.Result.Action,
			RuleID:  c.Result.RuleID,
			Matched: c.Result.Matched,
			Fields:  c.Alert.Fields,
		}
		if !c.Alert.Timestamp.IsZero() {
			jc.Timestamp = c.Alert.Timestamp.Format(time.RFC3339)
		}
		out.Actionable = append(out.Actionable, jc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// RenderCSV writes the actionable set as classified CSV rows.
func RenderCSV(w io.Writer, r *Report) error {
	actionable := r.Actionable()

	alertSet := make([]alerts.Alert, len(actionable))
	results := make([]engine.Result, len(actionable))
	for i := range actionable {
		alertSet[i] = actionable[i].Alert
		results[i] = actionable[i].Result
	}

	return alerts.WriteClassifiedCSV(w, alertSet, results, nil)
}

// RenderText implements the cli.Renderer surface.
func (r *Report) RenderText(w io.Writer) error { return RenderText(w, r) }

// RenderJSON implements the cli.Renderer surface.
func (r *Report) RenderJSON(w io.Writer) error { return RenderJSON(w, r) }

// RenderCSV implements the cli.Renderer surface.
func (r *Report) RenderCSV(w io.Writer) error { return RenderCSV(w, r) }

// fieldsLine renders the field bag: the conventional wildfire fields
// first with their units, any remaining fields after, sorted by name.
func fieldsLine(fields engine.Record) string {
	if len(fields) == 0 {
		return ""
	}

	var parts []string
	add := func(s string) { parts = append(parts, s) }

	if v, ok := fields["temp"]; ok {
		add(fmt.Sprintf("temp=%sC", formatValue(v)))
	}
	if v, ok := fields["hum"]; ok {
		add(fmt.Sprintf("hum=%s%%", formatValue(v)))
	}
	if v, ok := fields["wind"]; ok {
		add(fmt.Sprintf("wind=%skm/h", formatValue(v)))
	}
	if v, ok := fields["event_type"]; ok {
		add(fmt.Sprintf("event=%q", fmt.Sprintf("%v", v)))
	}

	var extras []string
	for name := range fields {
		switch name {
		case "temp", "hum", "wind", "event_type", "zone":
		default:
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		add(fmt.Sprintf("%s=%s", name, formatValue(fields[name])))
	}

	return strings.Join(parts, ", ")
}

// formatValue renders a field value for the text report.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
