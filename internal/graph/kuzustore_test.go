//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newKuzuTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newKuzuTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_EntityRoundTrip(t *testing.T) {
	s := newKuzuTestStore(t)
	ctx := context.Background()

	e := Entity{Name: "Foo.Bar", Kind: EntityKindEnum, Path: "Sources/Foo.swift", Size: 42}
	require.NoError(t, s.AddEntity(ctx, e))
	require.NoError(t, s.AddEntity(ctx, e), "re-adding is a no-op")

	got, err := s.Entities(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(NewEntitySet(e)))
}

func TestKuzuStore_MatchesMemStore(t *testing.T) {
	mem := newTestStore(t)
	seedChain(t, mem)
	kz := newKuzuTestStore(t)
	ctx := context.Background()

	require.NoError(t, CopyGraph(ctx, kz, mem))

	wantRels, _ := mem.Relationships(ctx)
	gotRels, err := kz.Relationships(ctx)
	require.NoError(t, err)
	assert.True(t, wantRels.Equal(gotRels), "got %v", gotRels.Sorted())

	wantStats, _ := mem.Stats(ctx)
	gotStats, err := kz.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantStats, gotStats)

	for _, dir := range []Direction{DirectionDownstream, DirectionUpstream} {
		want, _ := mem.GetDependencies(ctx, "B", dir, 3)
		got, err := kz.GetDependencies(ctx, "B", dir, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got, "direction %s", dir)
	}
}

func TestKuzuStore_QueryEntities(t *testing.T) {
	s := newKuzuTestStore(t)
	ctx := context.Background()
	for _, n := range []string{"Foo", "Foo.Bar", "Baz"} {
		require.NoError(t, s.AddEntity(ctx, Entity{Name: n, Kind: EntityKindStruct, Path: "a.swift"}))
	}

	got, err := s.QueryEntities(ctx, "Foo", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Foo", got[0].Name)

	got, err = s.QueryEntities(ctx, "Foo", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestKuzuStore_ReplaceRelationships(t *testing.T) {
	s := newKuzuTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	next := NewRelationshipSet(rel("C", "A", RelationshipNested, "C.swift"))
	require.NoError(t, s.ReplaceRelationships(ctx, next))

	got, err := s.Relationships(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(next))
}

func TestKuzuStore_RelationshipOutsideIndexIgnored(t *testing.T) {
	s := newKuzuTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddEntity(ctx, Entity{Name: "A", Kind: EntityKindStruct, Path: "a.swift"}))
	require.NoError(t, s.AddRelationship(ctx, rel("A", "Missing", RelationshipProperty, "a.swift")))

	got, err := s.Relationships(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestKuzuStore_FilePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph")
	ctx := context.Background()

	s, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	seedChain(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.EntityCount)
	assert.Equal(t, 4, stats.RelationshipCount)
}

func TestSaveKuzuGraph_ReplacesPreviousRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph")
	ctx := context.Background()

	first := newTestStore(t)
	seedChain(t, first)
	require.NoError(t, SaveKuzuGraph(ctx, dir, first))

	second := newTestStore(t)
	require.NoError(t, second.AddEntity(ctx, Entity{Name: "New", Kind: EntityKindClass, Path: "a.swift"}))
	require.NoError(t, second.AddEntity(ctx, Entity{Name: "Other", Kind: EntityKindStruct, Path: "a.swift"}))
	require.NoError(t, second.AddRelationship(ctx, rel("New", "Other", RelationshipProperty, "a.swift")))
	require.NoError(t, SaveKuzuGraph(ctx, dir, second))

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	wantEntities, err := second.Entities(ctx)
	require.NoError(t, err)
	gotEntities, err := reopened.Entities(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantEntities.Sorted(), gotEntities.Sorted())

	wantRels, err := second.Relationships(ctx)
	require.NoError(t, err)
	gotRels, err := reopened.Relationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantRels.Sorted(), gotRels.Sorted())
}

func TestKuzuStore_Reset(t *testing.T) {
	s := newKuzuTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.Reset(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.EntityCount)
	assert.Zero(t, stats.RelationshipCount)
}
