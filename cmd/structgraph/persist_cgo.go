//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/structgraph/internal/graph"
)

// persistGraph replaces the contents of the KuzuDB database at path with
// the cleaned graph.
func persistGraph(ctx context.Context, path string, src graph.Store) error {
	if err := graph.SaveKuzuGraph(ctx, path, src); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}
	return nil
}

// openGraph opens a database written by persistGraph.
func openGraph(path string) (graph.Store, error) {
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph db: %w", err)
	}
	return store, nil
}
