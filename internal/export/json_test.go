package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRunReport(t *testing.T) {
	report := NewRunReport("run-1", []string{"a.swift"},
		graph.GraphStats{EntityCount: 2, RelationshipCount: 1, FileCount: 1, FailedFileCount: 1},
		[]graph.PassReport{{Name: graph.PassSplitTypeReferences, Before: 3, After: 1}},
		[]SkipExport{{Path: "b.swift", Error: "timed out"}})

	var buf bytes.Buffer
	require.NoError(t, WriteRunReport(&buf, report))

	var got RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.NotEmpty(t, got.ExportedAt)
	assert.Equal(t, report.Stats, got.Stats)
	require.Len(t, got.Passes, 1)
	assert.Equal(t, 2, got.Passes[0].Removed)
	assert.Equal(t, []SkipExport{{Path: "b.swift", Error: "timed out"}}, got.Skipped)
}
