package alerts

import (
	"fmt"
	"time"

	"emberwatch/cinder/pkg/engine"
)

// CanonicalFields is the column order used for generated alert sets.
var CanonicalFields = []string{"temp", "hum", "wind", "event_type"}

// Timestamp layouts accepted by the readers, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Alert is one alert reading. Fields holds every input column except
// the timestamp and is handed to the engine as-is; the zone label
// appears both as Zone and as Fields["zone"], so rules may condition
// on it.
type Alert struct {
	Timestamp time.Time
	Zone      string
	Fields    engine.Record
}

// Record returns the field bag to evaluate.
func (a *Alert) Record() engine.Record {
	return a.Fields
}

// RowError describes a single unusable input row. Rows are 1-based and
// count data rows, not physical lines.
type RowError struct {
	Row int
	Err error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error {
	return e.Err
}

// parseTimestamp tries the accepted layouts in order.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
