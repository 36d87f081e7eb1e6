package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/parser"
)

// Source supplies decoded rules to Load. Implementations report
// themselves through String for logging and error messages.
type Source interface {
	Load(ctx context.Context) ([]rules.Rule, error)
	String() string
}

// FileSource loads rules from a JSON or YAML file on disk. When the
// path is a directory, every .json, .yaml, and .yml file below it is
// loaded and the rule lists are concatenated in lexical path order.
type FileSource struct {
	path string
}

// NewFileSource creates a file-based rule source for a file or directory.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// String implements Source.
func (s *FileSource) String() string {
	return s.path
}

// Load implements Source. A missing path maps to SourceNotFoundError;
// any undecodable or structurally broken file fails the whole load.
func (s *FileSource) Load(ctx context.Context) ([]rules.Rule, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rules.SourceNotFoundError{Source: s.path, Err: err}
		}
		return nil, fmt.Errorf("stat rule source %q: %w", s.path, err)
	}

	if info.IsDir() {
		return s.loadDirectory(ctx)
	}
	return parser.ParseFile(s.path)
}

// loadDirectory walks the source directory and merges every rule file.
func (s *FileSource) loadDirectory(_ context.Context) ([]rules.Rule, error) {
	var merged []rules.Rule

	err := filepath.WalkDir(s.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != s.path {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}

		ruleSet, err := parser.ParseFile(path)
		if err != nil {
			return err
		}
		merged = append(merged, ruleSet...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}

// MemorySource serves a fixed rule list. It is used by tests and by
// callers that build rules programmatically.
type MemorySource struct {
	name    string
	ruleSet []rules.Rule
}

// NewMemorySource creates an in-memory rule source. The name appears in
// logs and errors; it defaults to "memory".
func NewMemorySource(name string, ruleSet []rules.Rule) *MemorySource {
	if name == "" {
		name = "memory"
	}
	return &MemorySource{name: name, ruleSet: ruleSet}
}

// String implements Source.
func (s *MemorySource) String() string {
	return s.name
}

// Load implements Source.
func (s *MemorySource) Load(_ context.Context) ([]rules.Rule, error) {
	return s.ruleSet, nil
}
