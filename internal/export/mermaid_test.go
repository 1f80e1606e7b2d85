package export

import (
	"context"
	"strings"
	"testing"

	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	entities, rels := sampleGraph()

	store := graph.NewMemStore()
	for e := range entities {
		require.NoError(t, store.AddEntity(ctx, e))
	}
	require.NoError(t, store.ReplaceRelationships(ctx, rels))
	// Same edge from a second file draws one arrow.
	require.NoError(t, store.AddRelationship(ctx, graph.Relationship{
		Object: "Foo", Dependency: "Foo.Bar", Kind: graph.RelationshipNested, Path: "Sources/Other.swift",
	}))

	out, err := GenerateMermaid(ctx, store)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `subgraph`)
	assert.Contains(t, out, `["Sources/Foo.swift"]`)
	assert.Contains(t, out, `["struct Foo"]`)
	assert.Contains(t, out, `["enum Foo.Bar"]`)
	assert.Equal(t, 1, strings.Count(out, "-->|nested|"))
	assert.Equal(t, 1, strings.Count(out, "-->|called_static|"))
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.Equal(t, "graph LR\n", out)
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "Sources/Foo.swift", shortPath("/home/dev/App/Sources/Foo.swift"))
	assert.Equal(t, "Foo.swift", shortPath("Foo.swift"))
}
