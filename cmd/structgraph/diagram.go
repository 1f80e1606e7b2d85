package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dusk-indust/structgraph/internal/export"
	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/spf13/cobra"
)

func newDiagramCmd() *cobra.Command {
	var input, graphDB string

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print a Mermaid diagram of an extracted graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiagram(cmd, input, graphDB)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "table prefix written by extract")
	cmd.Flags().StringVar(&graphDB, "graph-db", "", "graph database written by extract --graph-db")
	cmd.MarkFlagsMutuallyExclusive("input", "graph-db")
	return cmd
}

func runDiagram(cmd *cobra.Command, input, graphDB string) error {
	ctx := cmd.Context()

	var (
		store graph.Store
		err   error
	)
	switch {
	case graphDB != "":
		store, err = openGraph(graphDB)
	case input != "":
		store, err = loadTables(ctx, input)
	default:
		err = errors.New("one of --input or --graph-db is required")
	}
	if err != nil {
		return err
	}
	defer store.Close()

	mermaid, err := export.GenerateMermaid(ctx, store)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), mermaid)
	return nil
}

// loadTables imports the CSV tables at prefix into a MemStore.
func loadTables(ctx context.Context, prefix string) (*graph.MemStore, error) {
	entities, rels, err := export.ImportTables(prefix)
	if err != nil {
		return nil, err
	}
	store := graph.NewMemStore()
	for e := range entities {
		if err := store.AddEntity(ctx, e); err != nil {
			return nil, err
		}
	}
	if err := store.ReplaceRelationships(ctx, rels); err != nil {
		return nil, err
	}
	return store, nil
}
