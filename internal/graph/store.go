package graph

import (
	"context"
	"fmt"
	"io"
)

// Store is the interface for the structure graph backend.
// Implementations: MemStore (extraction sessions), KuzuStore (persistence).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. Inserting an identical value twice is a no-op.
	AddEntity(ctx context.Context, e Entity) error
	AddRelationship(ctx context.Context, r Relationship) error

	// ReplaceRelationships swaps the whole relationship set, as cleanup does.
	ReplaceRelationships(ctx context.Context, rels RelationshipSet) error

	// Read operations.
	Entities(ctx context.Context) (EntitySet, error)
	Relationships(ctx context.Context) (RelationshipSet, error)
	QueryEntities(ctx context.Context, query string, limit int) ([]Entity, error)

	// Graph traversal over relationships, by entity name.
	GetDependencies(ctx context.Context, name string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what depends on this?
	DirectionDownstream Direction = "downstream" // what does this depend on?
)

// CopyGraph copies every entity and relationship from src into dst.
// Entities are written first so relationship endpoints already exist.
func CopyGraph(ctx context.Context, dst, src Store) error {
	if err := dst.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	entities, err := src.Entities(ctx)
	if err != nil {
		return fmt.Errorf("read entities: %w", err)
	}
	for _, e := range entities.Sorted() {
		if err := dst.AddEntity(ctx, e); err != nil {
			return fmt.Errorf("add entity %s: %w", e.Name, err)
		}
	}

	rels, err := src.Relationships(ctx)
	if err != nil {
		return fmt.Errorf("read relationships: %w", err)
	}
	for _, r := range rels.Sorted() {
		if err := dst.AddRelationship(ctx, r); err != nil {
			return fmt.Errorf("add relationship %s->%s: %w", r.Object, r.Dependency, err)
		}
	}
	return nil
}
