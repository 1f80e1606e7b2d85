package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/structgraph/internal/graph"
)

// RunReport is the JSON summary of one extraction run.
type RunReport struct {
	RunID      string           `json:"runId"`
	ExportedAt string           `json:"exportedAt"`
	Stats      graph.GraphStats `json:"stats"`
	Passes     []PassExport     `json:"passes"`
	Files      []string         `json:"files"`
	Skipped    []SkipExport     `json:"skipped,omitempty"`
}

// PassExport describes one cleanup pass.
type PassExport struct {
	Name    string `json:"name"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
	Removed int    `json:"removed"`
}

// SkipExport describes an input that contributed nothing.
type SkipExport struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewRunReport builds a RunReport from the outcome of a run.
func NewRunReport(runID string, files []string, stats graph.GraphStats, passes []graph.PassReport, skipped []SkipExport) *RunReport {
	report := &RunReport{
		RunID:      runID,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      stats,
		Files:      files,
		Skipped:    skipped,
	}
	for _, p := range passes {
		report.Passes = append(report.Passes, PassExport{
			Name:    p.Name,
			Before:  p.Before,
			After:   p.After,
			Removed: p.Removed(),
		})
	}
	return report
}

// WriteRunReport writes report as indented JSON.
func WriteRunReport(w io.Writer, report *RunReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// ExportRunReport writes report to path.
func ExportRunReport(path string, report *RunReport) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteRunReport(w, report)
	})
}
