package graph

// Collector accumulates the entities and relationships extracted from one
// file. It is not safe for concurrent use; each worker owns its own
// Collector and merges it into a Store when the file is done.
type Collector struct {
	Entities      EntitySet
	Relationships RelationshipSet
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		Entities:      make(EntitySet),
		Relationships: make(RelationshipSet),
	}
}

// RecordEntity indexes a declared entity. A negative size is clamped to 0.
func (c *Collector) RecordEntity(name string, kind EntityKind, path string, size int) {
	if size < 0 {
		size = 0
	}
	c.Entities.Add(Entity{Name: name, Kind: kind, Path: path, Size: size})
}

// RecordRelationship records an edge from source to target. An empty source
// defaults to the context's enclosing declaration. Edges with an empty
// endpoint or identical endpoints are dropped. It reports whether the edge
// was kept.
func (c *Collector) RecordRelationship(ctx TraversalContext, source, target string, kind RelationshipKind) bool {
	if source == "" {
		source = ctx.Declaration
	}
	if source == "" || target == "" || source == target {
		return false
	}
	c.Relationships.Add(Relationship{
		Object:     source,
		Dependency: target,
		Kind:       kind,
		Path:       ctx.File,
	})
	return true
}

// Merge copies every entity and relationship from other into c.
func (c *Collector) Merge(other *Collector) {
	for e := range other.Entities {
		c.Entities.Add(e)
	}
	for r := range other.Relationships {
		c.Relationships.Add(r)
	}
}
