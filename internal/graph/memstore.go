package graph

import (
	"context"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex; it
// is the single insertion point workers merge their per-file results into.
type MemStore struct {
	mu            sync.RWMutex
	entities      EntitySet
	relationships RelationshipSet
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		entities:      make(EntitySet),
		relationships: make(RelationshipSet),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddEntity inserts an entity into the index set.
func (m *MemStore) AddEntity(_ context.Context, e Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities.Add(e)
	return nil
}

// AddRelationship inserts a relationship into the relationship set.
func (m *MemStore) AddRelationship(_ context.Context, r Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships.Add(r)
	return nil
}

// Merge inserts a whole per-file contribution under a single lock.
func (m *MemStore) Merge(c *Collector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for e := range c.Entities {
		m.entities.Add(e)
	}
	for r := range c.Relationships {
		m.relationships.Add(r)
	}
}

// ReplaceRelationships swaps the relationship set for a copy of rels.
func (m *MemStore) ReplaceRelationships(_ context.Context, rels RelationshipSet) error {
	next := make(RelationshipSet, len(rels))
	for r := range rels {
		next.Add(r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships = next
	return nil
}

// Entities returns a copy of the entity set.
func (m *MemStore) Entities(_ context.Context) (EntitySet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(EntitySet, len(m.entities))
	for e := range m.entities {
		out.Add(e)
	}
	return out, nil
}

// Relationships returns a copy of the relationship set.
func (m *MemStore) Relationships(_ context.Context) (RelationshipSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(RelationshipSet, len(m.relationships))
	for r := range m.relationships {
		out.Add(r)
	}
	return out, nil
}

// QueryEntities returns entities whose name contains query (case-insensitive),
// sorted, up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryEntities(_ context.Context, query string, limit int) ([]Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []Entity
	for _, e := range m.entities.Sorted() {
		if strings.Contains(strings.ToLower(e.Name), lowerQuery) {
			results = append(results, e)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// GetDependencies performs a BFS over relationships from name in the given
// direction, up to maxDepth hops. It returns one DependencyChain per
// reachable entity.
func (m *MemStore) GetDependencies(_ context.Context, name string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		id   string
		path []string
	}

	adj := m.adjacency(direction)
	visited := map[string]bool{name: true}
	queue := []bfsEntry{{id: name, path: []string{name}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range adj[entry.id] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// adjacency builds a neighbor list along direction. Neighbors are in sorted
// relationship order so traversal output is deterministic.
func (m *MemStore) adjacency(direction Direction) map[string][]string {
	adj := make(map[string][]string)
	seen := make(map[[2]string]bool)
	for _, r := range m.relationships.Sorted() {
		from, to := r.Object, r.Dependency
		if direction == DirectionUpstream {
			from, to = to, from
		}
		key := [2]string{from, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[from] = append(adj[from], to)
	}
	return adj
}

// Stats returns entity, relationship and distinct file counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make(map[string]bool)
	for e := range m.entities {
		files[e.Path] = true
	}
	for r := range m.relationships {
		files[r.Path] = true
	}
	return &GraphStats{
		EntityCount:       len(m.entities),
		RelationshipCount: len(m.relationships),
		FileCount:         len(files),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
