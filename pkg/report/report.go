// Package report turns classification results into operator-facing
// summaries and action reports.
package report

import (
	"sort"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/engine"
	"emberwatch/cinder/pkg/rules"
)

// severityRank orders the standard risk labels, most urgent first.
var severityRank = map[string]int{
	"CRITICAL": 1,
	"HIGH":     2,
	"MEDIUM":   3,
	"LOW":      4,
	"NORMAL":   5,
}

// rankUnknown sorts labels outside the standard set after all of them.
const rankUnknown = 6

// Rank returns the severity rank of a risk label. Lower is more
// urgent; labels outside the standard set rank after all known ones.
func Rank(risk string) int {
	if rank, ok := severityRank[risk]; ok {
		return rank
	}
	return rankUnknown
}

// Classification pairs an alert with its evaluation result.
type Classification struct {
	Alert  alerts.Alert
	Result engine.Result
}

// Summary aggregates one classification run.
type Summary struct {
	// Total is the number of classified alerts.
	Total int `json:"total"`

	// Actionable counts results whose risk differs from the normal
	// label.
	Actionable int `json:"actionable"`

	// ByRisk counts results per risk label.
	ByRisk map[string]int `json:"by_risk"`
}

// Report holds one classification run for rendering.
type Report struct {
	// Classifications are the paired alerts and results, in
	// evaluation order.
	Classifications []Classification

	// NormalLabel is the risk label that requires no action.
	// Default: the engine's default risk label.
	NormalLabel string
}

// New builds a report over a classification run.
func New(classifications []Classification) *Report {
	return &Report{
		Classifications: classifications,
		NormalLabel:     rules.DefaultRisk,
	}
}

// Summary aggregates totals and per-risk counts.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:  len(r.Classifications),
		ByRisk: make(map[string]int),
	}
	for i := range r.Classifications {
		risk := r.Classifications[i].Result.Risk
		s.ByRisk[risk]++
		if risk != r.NormalLabel {
			s.Actionable++
		}
	}
	return s
}

// Actionable returns the classifications that require action, sorted
// by severity rank and then timestamp. Unknown labels sort after the
// standard ones, alphabetically.
func (r *Report) Actionable() []Classification {
	var out []Classification
	for i := range r.Classifications {
		if r.Classifications[i].Result.Risk != r.NormalLabel {
			out = append(out, r.Classifications[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := Rank(out[i].Result.Risk), Rank(out[j].Result.Risk)
		if ri != rj {
			return ri < rj
		}
		if ri == rankUnknown && out[i].Result.Risk != out[j].Result.Risk {
			return out[i].Result.Risk < out[j].Result.Risk
		}
		return out[i].Alert.Timestamp.Before(out[j].Alert.Timestamp)
	})

	return out
}

// riskLabels returns the labels present in the summary, ordered by
// severity rank with unknown labels last, alphabetically.
func riskLabels(byRisk map[string]int) []string {
	labels := make([]string, 0, len(byRisk))
	for label := range byRisk {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := Rank(labels[i]), Rank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})
	return labels
}
