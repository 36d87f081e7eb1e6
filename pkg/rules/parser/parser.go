package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"emberwatch/cinder/pkg/rules"
)

// Format identifies a rule document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath returns the document format expected for a file path.
// JSON is the default; only .yaml and .yml extensions select YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFile reads and decodes one rule document. A missing file maps to
// SourceNotFoundError and undecodable content to MalformedSourceError.
func ParseFile(path string) ([]rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rules.SourceNotFoundError{Source: path, Err: err}
		}
		return nil, fmt.Errorf("reading rule source %q: %w", path, err)
	}
	return Parse(data, path, FormatForPath(path))
}

// Parse decodes a rule document from bytes in the given format.
// The source name is used only for error reporting.
func Parse(data []byte, source string, format Format) ([]rules.Rule, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data, source)
	default:
		return ParseJSON(data, source)
	}
}

// ParseJSON decodes the canonical JSON form: a top-level array of rule
// objects.
func ParseJSON(data []byte, source string) ([]rules.Rule, error) {
	var doc []documentRule
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &rules.MalformedSourceError{Source: source, Format: "json", Err: err}
	}
	return convert(doc)
}

// ParseYAML decodes the YAML form: either a bare sequence of rule
// objects or a document with a top-level "rules:" key.
func ParseYAML(data []byte, source string) ([]rules.Rule, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &rules.MalformedSourceError{Source: source, Format: "yaml", Err: err}
	}

	// Empty documents decode to a zero node.
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	var doc []documentRule

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&doc); err != nil {
			return nil, &rules.MalformedSourceError{Source: source, Format: "yaml", Err: err}
		}
	default:
		var wrapped yamlDocument
		if err := root.Decode(&wrapped); err != nil {
			return nil, &rules.MalformedSourceError{Source: source, Format: "yaml", Err: err}
		}
		doc = wrapped.Rules
	}

	return convert(doc)
}
