// Package transcript persists pipeline runs to disk: run metadata, per-stage
// records and the final output, so a run can be inspected after the fact.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Pipeline  string    `json:"pipeline"`
	Status    string    `json:"status"`
}

// StageRecord captures the prompt and reply of a single stage.
type StageRecord struct {
	Name           string         `json:"name"`
	Agent          string         `json:"agent"`
	Model          string         `json:"model,omitempty"`
	Input          string         `json:"input,omitempty"`
	Output         string         `json:"output,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	DurationMillis int64          `json:"duration_ms"`
}

// Writer writes run transcripts to disk.
type Writer struct {
	baseDir string
	runID   string
	runDir  string
}

// NewWriter creates a transcript writer rooted at baseDir/runs/<runID>,
// generating a fresh run ID.
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	runID := uuid.New().String()
	runDir := filepath.Join(baseDir, "runs", runID)
	if err := os.MkdirAll(filepath.Join(runDir, "stages"), 0755); err != nil {
		return nil, err
	}

	return &Writer{baseDir: baseDir, runID: runID, runDir: runDir}, nil
}

// RunID returns the generated run identifier.
func (w *Writer) RunID() string {
	return w.runID
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteRun writes run metadata to run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	if record.ID == "" {
		record.ID = w.runID
	}
	return writeJSON(filepath.Join(w.runDir, "run.json"), record)
}

// WriteStage writes a stage record to stages/<stage>.json.
func (w *Writer) WriteStage(record StageRecord) error {
	if record.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	path := filepath.Join(w.runDir, "stages", fmt.Sprintf("%s.json", record.Name))
	return writeJSON(path, record)
}

// SaveOutput writes the final pipeline output to <stage>.md in the run
// directory.
func (w *Writer) SaveOutput(stage, content string) error {
	if stage == "" {
		return fmt.Errorf("stage name is required")
	}
	path := filepath.Join(w.runDir, fmt.Sprintf("%s.md", stage))
	return os.WriteFile(path, []byte(content), 0644)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
