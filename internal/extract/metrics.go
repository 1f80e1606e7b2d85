package extract

import (
	"fmt"

	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Extraction
// =============================================================================

var (
	// filesTotal counts analyzed files by outcome.
	// Labels: status (ok, failed)
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "structgraph",
		Subsystem: "extract",
		Name:      "files_total",
		Help:      "Total files analyzed by outcome",
	}, []string{"status"})

	// fileSeconds measures tool invocation plus walk time per file.
	fileSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "structgraph",
		Subsystem: "extract",
		Name:      "file_seconds",
		Help:      "Per-file structure extraction latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// graphSize reports the merged graph size of the last run.
	// Labels: set (entities, relationships_raw, relationships)
	graphSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "structgraph",
		Subsystem: "extract",
		Name:      "graph_size",
		Help:      "Entity and relationship counts of the last extraction run",
	}, []string{"set"})

	// cleanupRemovedTotal counts relationships removed by each cleanup pass.
	// Labels: pass
	cleanupRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "structgraph",
		Subsystem: "cleanup",
		Name:      "removed_total",
		Help:      "Relationships removed by cleanup pass (negative deltas are not counted)",
	}, []string{"pass"})
)

// recordFile records the outcome and latency of one file.
func recordFile(ok bool, seconds float64) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	filesTotal.WithLabelValues(status).Inc()
	fileSeconds.Observe(seconds)
}

// recordCleanup records graph sizes and per-pass deltas of a finished run.
func recordCleanup(entities, rawRelationships, relationships int, reports []graph.PassReport) {
	graphSize.WithLabelValues("entities").Set(float64(entities))
	graphSize.WithLabelValues("relationships_raw").Set(float64(rawRelationships))
	graphSize.WithLabelValues("relationships").Set(float64(relationships))
	for _, r := range reports {
		if removed := r.Removed(); removed > 0 {
			cleanupRemovedTotal.WithLabelValues(r.Name).Add(float64(removed))
		}
	}
}

// WriteMetrics writes the default registry in the Prometheus text format to
// path, for node_exporter's textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
