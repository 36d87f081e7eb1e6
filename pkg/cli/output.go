package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText is human-readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat converts a flag value to an OutputFormat. Empty defaults to
// text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json, or csv)", s)
	}
}

// Renderer is implemented by results that own their rendering, such as
// classification reports. Formatters dispatch to it before falling back to
// generic encoding.
type Renderer interface {
	RenderText(w io.Writer) error
	RenderJSON(w io.Writer) error
	RenderCSV(w io.Writer) error
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter renders human-readable output. Renderers use their own
// text form; everything else goes through fmt.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	if r, ok := data.(Renderer); ok {
		return r.RenderText(w)
	}
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter renders JSON output.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	if r, ok := data.(Renderer); ok {
		return r.RenderJSON(w)
	}
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter renders CSV output. Beyond Renderers it accepts [][]string
// row data, optionally prefixed with Headers.
type CSVFormatter struct {
	Headers []string
}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	if r, ok := data.(Renderer); ok {
		return r.RenderCSV(w)
	}

	rows, ok := data.([][]string)
	if !ok {
		return fmt.Errorf("csv output not supported for %T", data)
	}

	csvWriter := csv.NewWriter(w)

	if len(f.Headers) > 0 {
		if err := csvWriter.Write(f.Headers); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// NewFormatter creates a formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
