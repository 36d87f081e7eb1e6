package alerts

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"emberwatch/cinder/pkg/engine"
)

// ReadCSV reads an alert set from header-driven CSV. Column order is
// free; "timestamp" and "zone" are recognized by name and every other
// column becomes an evaluation field. Unusable rows are collected as
// RowErrors and skipped rather than failing the read: one bad row must
// not halt a monitoring stream.
func ReadCSV(r io.Reader) ([]Alert, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var (
		out     []Alert
		rowErrs []RowError
		row     int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}
		if len(record) != len(columns) {
			rowErrs = append(rowErrs, RowError{
				Row: row,
				Err: fmt.Errorf("%d values for %d columns", len(record), len(columns)),
			})
			continue
		}

		alert, err := rowToAlert(columns, record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}
		out = append(out, alert)
	}

	return out, rowErrs, nil
}

// rowToAlert converts one CSV row under the given columns.
func rowToAlert(columns, record []string) (Alert, error) {
	alert := Alert{Fields: make(engine.Record, len(columns))}

	for i, col := range columns {
		cell := strings.TrimSpace(record[i])
		if cell == "" {
			continue
		}

		switch col {
		case "timestamp":
			ts, err := parseTimestamp(cell)
			if err != nil {
				return Alert{}, err
			}
			alert.Timestamp = ts
		case "zone":
			alert.Zone = cell
			alert.Fields["zone"] = cell
		default:
			alert.Fields[col] = parseCell(cell)
		}
	}

	return alert, nil
}

// parseCell infers the field value: numbers become float64, everything
// else stays a string.
func parseCell(cell string) interface{} {
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

// WriteCSV writes an alert set with a header row. The fields argument
// fixes the column order after timestamp and zone; nil means the
// sorted union of all field names.
func WriteCSV(w io.Writer, alertSet []Alert, fields []string) error {
	if fields == nil {
		fields = collectFields(alertSet)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string{"timestamp", "zone"}, fields...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range alertSet {
		if err := writer.Write(alertRow(&alertSet[i], fields, nil)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteClassifiedCSV writes alerts together with their classification
// results, one result per alert: the input columns followed by risk,
// action, and rule_id.
func WriteClassifiedCSV(w io.Writer, alertSet []Alert, results []engine.Result, fields []string) error {
	if len(alertSet) != len(results) {
		return fmt.Errorf("%d alerts with %d results", len(alertSet), len(results))
	}
	if fields == nil {
		fields = collectFields(alertSet)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string{"timestamp", "zone"}, fields...)
	header = append(header, "risk", "action", "rule_id")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range alertSet {
		row := alertRow(&alertSet[i], fields, &results[i])
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// alertRow renders one alert, optionally with its result columns.
func alertRow(alert *Alert, fields []string, res *engine.Result) []string {
	row := make([]string, 0, len(fields)+5)

	if alert.Timestamp.IsZero() {
		row = append(row, "")
	} else {
		row = append(row, alert.Timestamp.Format(time.RFC3339))
	}
	row = append(row, alert.Zone)

	for _, field := range fields {
		value, ok := alert.Fields[field]
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, formatCell(value))
	}

	if res != nil {
		row = append(row, res.Risk, res.Action, res.RuleID)
	}
	return row
}

// formatCell renders a field value for CSV.
func formatCell(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// collectFields returns the sorted union of field names, zone excluded
// because it has a dedicated column.
func collectFields(alertSet []Alert) []string {
	seen := make(map[string]bool)
	for i := range alertSet {
		for name := range alertSet[i].Fields {
			if name != "zone" {
				seen[name] = true
			}
		}
	}

	fields := make([]string, 0, len(seen))
	for name := range seen {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
