package graph

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a MemStore with an initialized schema.
func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	s := NewMemStore()
	require.NoError(t, s.InitSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedChain stores A -> B -> C plus D -> B.
func seedChain(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, n := range []string{"A", "B", "C", "D"} {
		require.NoError(t, s.AddEntity(ctx, Entity{Name: n, Kind: EntityKindClass, Path: n + ".swift", Size: 1}))
	}
	require.NoError(t, s.AddRelationship(ctx, rel("A", "B", RelationshipProperty, "A.swift")))
	require.NoError(t, s.AddRelationship(ctx, rel("A", "B", RelationshipCalled, "A.swift")))
	require.NoError(t, s.AddRelationship(ctx, rel("B", "C", RelationshipInheritance, "B.swift")))
	require.NoError(t, s.AddRelationship(ctx, rel("D", "B", RelationshipFuncParameter, "D.swift")))
}

func TestMemStore_Merge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewCollector()
			c.RecordEntity("Shared", EntityKindStruct, "a.swift", 3)
			c.RecordRelationship(NewTraversalContext("a.swift").ChildScope("Shared"), "", "Other", RelationshipProperty)
			s.Merge(c)
		}()
	}
	wg.Wait()

	got, err := s.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	rels, err := s.Relationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rels.Len())
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	got, err := s.Entities(ctx)
	require.NoError(t, err)
	got.Add(Entity{Name: "Injected"})

	again, err := s.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, again.Len())
}

func TestMemStore_ReplaceRelationships(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	next := NewRelationshipSet(rel("C", "A", RelationshipNested, "C.swift"))
	require.NoError(t, s.ReplaceRelationships(ctx, next))
	next.Add(rel("A", "C", RelationshipNested, "A.swift"))

	got, err := s.Relationships(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(NewRelationshipSet(rel("C", "A", RelationshipNested, "C.swift"))))
}

func TestMemStore_QueryEntities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, n := range []string{"Foo", "Foo.Bar", "Baz"} {
		require.NoError(t, s.AddEntity(ctx, Entity{Name: n, Kind: EntityKindStruct, Path: "a.swift"}))
	}

	got, err := s.QueryEntities(ctx, "foo", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Foo", got[0].Name)
	assert.Equal(t, "Foo.Bar", got[1].Name)

	got, err = s.QueryEntities(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Baz", got[0].Name)
}

func TestMemStore_GetDependencies(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	down, err := s.GetDependencies(ctx, "A", DirectionDownstream, 5)
	require.NoError(t, err)
	assert.Equal(t, []DependencyChain{
		{Nodes: []string{"A", "B"}, Depth: 1},
		{Nodes: []string{"A", "B", "C"}, Depth: 2},
	}, down)

	up, err := s.GetDependencies(ctx, "B", DirectionUpstream, 1)
	require.NoError(t, err)
	assert.Equal(t, []DependencyChain{
		{Nodes: []string{"B", "A"}, Depth: 1},
		{Nodes: []string{"B", "D"}, Depth: 1},
	}, up)

	none, err := s.GetDependencies(ctx, "A", DirectionDownstream, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_Stats(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{EntityCount: 4, RelationshipCount: 4, FileCount: 4}, stats)
}

func TestCopyGraph(t *testing.T) {
	src := newTestStore(t)
	seedChain(t, src)
	dst := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, CopyGraph(ctx, dst, src))

	want, _ := src.Relationships(ctx)
	got, err := dst.Relationships(ctx)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}
