package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/engine"
	"emberwatch/cinder/pkg/history"
	"emberwatch/cinder/pkg/ingest/checkpoint"
	"emberwatch/cinder/pkg/report"
)

// FileResult summarizes the ingestion of one feed file.
type FileResult struct {
	// Path is the ingested file.
	Path string

	// Fingerprint is the content hash recorded in the checkpoint.
	Fingerprint string

	// RunID identifies this ingestion in the history store.
	RunID string

	// Records is how many alerts the file yielded.
	Records int

	// RowErrors is how many rows were skipped as malformed.
	RowErrors int

	// Actionable is how many classifications rose above the default.
	Actionable int

	// Skipped is true when the checkpoint store had already seen this
	// exact file content.
	Skipped bool
}

// Processor classifies feed files and checkpoints them. A nil history
// store disables history recording; classification still runs.
type Processor struct {
	engine      *engine.Engine
	checkpoints checkpoint.Store
	history     history.Store
	logger      *slog.Logger
}

// NewProcessor creates a feed file processor.
func NewProcessor(eng *engine.Engine, checkpoints checkpoint.Store, logger *slog.Logger) (*Processor, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		engine:      eng,
		checkpoints: checkpoints,
		logger:      logger,
	}, nil
}

// WithHistory enables history recording for processed files.
func (p *Processor) WithHistory(store history.Store) *Processor {
	p.history = store
	return p
}

// ProcessFile classifies every record in one feed file. Files whose
// content fingerprint matches an existing checkpoint are skipped.
// Malformed rows are counted and logged, never fatal.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	fingerprint, err := FileFingerprint(path)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", path, err)
	}

	result := &FileResult{
		Path:        path,
		Fingerprint: fingerprint,
	}

	seen, err := p.checkpoints.Seen(ctx, path, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("checking checkpoint for %s: %w", path, err)
	}
	if seen {
		result.Skipped = true
		p.logger.Debug("feed file already ingested", "path", path)
		return result, nil
	}

	alertSet, rowErrors, err := readAlerts(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	result.Records = len(alertSet)
	result.RowErrors = len(rowErrors)
	if len(rowErrors) > 0 {
		p.logger.Warn("skipped malformed feed rows",
			"path", path,
			"skipped", len(rowErrors),
			"first_error", rowErrors[0].Error(),
		)
	}

	result.RunID = uuid.NewString()

	classifications := make([]report.Classification, len(alertSet))
	for i, alert := range alertSet {
		classifications[i] = report.Classification{
			Alert:  alert,
			Result: p.engine.EvaluateOne(alert.Record()),
		}
	}

	summary := report.New(classifications).Summary()
	result.Actionable = summary.Actionable

	if p.history != nil && len(classifications) > 0 {
		entries := make([]history.Entry, len(classifications))
		for i, c := range classifications {
			entries[i] = history.Entry{
				RunID:     result.RunID,
				Timestamp: c.Alert.Timestamp,
				Zone:      c.Alert.Zone,
				Risk:      c.Result.Risk,
				Action:    c.Result.Action,
				RuleID:    c.Result.RuleID,
				Matched:   c.Result.Matched,
				Fields:    c.Alert.Fields,
			}
		}
		if err := p.history.Record(ctx, entries); err != nil {
			p.logger.Warn("history recording failed, continuing without it",
				"path", path,
				"error", err,
			)
		}
	}

	if err := p.checkpoints.Mark(ctx, path, fingerprint, result.Records); err != nil {
		return result, fmt.Errorf("checkpointing %s: %w", path, err)
	}

	p.logger.Info("feed file ingested",
		"path", path,
		"records", result.Records,
		"row_errors", result.RowErrors,
		"actionable", result.Actionable,
		"run_id", result.RunID,
	)

	return result, nil
}

// readAlerts decodes a feed file by extension.
func readAlerts(path string) ([]alerts.Alert, []alerts.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return alerts.ReadCSV(f)
	case ".jsonl":
		return alerts.ReadJSONL(f)
	default:
		return nil, nil, fmt.Errorf("unsupported feed file extension %q", filepath.Ext(path))
	}
}

// FileFingerprint returns the hex SHA-256 of a file's contents.
func FileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
