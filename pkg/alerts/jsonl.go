package alerts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"emberwatch/cinder/pkg/engine"
)

// maxJSONLLine bounds a single JSONL line.
const maxJSONLLine = 1 << 20

// ReadJSONL reads an alert set from JSON Lines: one object per line,
// same field contract as the CSV reader. Blank lines are skipped;
// undecodable lines are collected as RowErrors.
func ReadJSONL(r io.Reader) ([]Alert, []RowError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)

	var (
		out     []Alert
		rowErrs []RowError
		row     int
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row++

		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}

		alert, err := objectToAlert(raw)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}
		out = append(out, alert)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read jsonl: %w", err)
	}
	return out, rowErrs, nil
}

// objectToAlert converts one decoded JSON object.
func objectToAlert(raw map[string]interface{}) (Alert, error) {
	alert := Alert{Fields: make(engine.Record, len(raw))}

	for key, value := range raw {
		switch key {
		case "timestamp":
			s, ok := value.(string)
			if !ok {
				return Alert{}, fmt.Errorf("timestamp must be a string, got %T", value)
			}
			ts, err := parseTimestamp(s)
			if err != nil {
				return Alert{}, err
			}
			alert.Timestamp = ts
		case "zone":
			if s, ok := value.(string); ok {
				alert.Zone = s
			}
			alert.Fields["zone"] = value
		default:
			alert.Fields[key] = value
		}
	}

	return alert, nil
}
