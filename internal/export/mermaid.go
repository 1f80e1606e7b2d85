package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/structgraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph LR diagram from a graph store.
// Entities are grouped by source file; relationships become labelled arrows.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	entities, err := store.Entities(ctx)
	if err != nil {
		return "", fmt.Errorf("get entities: %w", err)
	}

	rels, err := store.Relationships(ctx)
	if err != nil {
		return "", fmt.Errorf("get relationships: %w", err)
	}

	// Build name → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[name] = id
		return id
	}

	// Group entities by file; a name declared in several files is drawn once,
	// in the first file in sorted order.
	byFile := make(map[string][]graph.Entity)
	drawn := make(map[string]bool)
	for _, e := range entities.Sorted() {
		if drawn[e.Name] {
			continue
		}
		drawn[e.Name] = true
		byFile[e.Path] = append(byFile[e.Path], e)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, f := range files {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID(f+"_file"), shortPath(f)))
		for _, e := range byFile[f] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s %s\"]\n", getID(e.Name), e.Kind, e.Name))
		}
		sb.WriteString("  end\n")
	}

	// Emit one arrow per (object, dependency, kind); paths are not drawn.
	emitted := make(map[string]bool)
	for _, r := range rels.Sorted() {
		key := r.Object + "\x00" + r.Dependency + "\x00" + string(r.Kind)
		if emitted[key] {
			continue
		}
		emitted[key] = true
		sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", getID(r.Object), r.Kind, getID(r.Dependency)))
	}

	return sb.String(), nil
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
