package graph

import (
	"cmp"
	"slices"
)

// --- Enums ---

// EntityKind classifies declared entities in the structure graph.
type EntityKind string

const (
	EntityKindStruct   EntityKind = "struct"
	EntityKindClass    EntityKind = "class"
	EntityKindEnum     EntityKind = "enum"
	EntityKindProtocol EntityKind = "protocol"
)

// EntityKinds lists every valid EntityKind.
var EntityKinds = []EntityKind{EntityKindStruct, EntityKindClass, EntityKindEnum, EntityKindProtocol}

// Valid reports whether k is one of the known entity kinds.
func (k EntityKind) Valid() bool {
	return slices.Contains(EntityKinds, k)
}

// RelationshipKind classifies directed relationships between entities.
type RelationshipKind string

const (
	RelationshipNested         RelationshipKind = "nested"
	RelationshipFuncParameter  RelationshipKind = "func_parameter"
	RelationshipProperty       RelationshipKind = "property"
	RelationshipStaticProperty RelationshipKind = "static_property"
	RelationshipCalled         RelationshipKind = "called"
	RelationshipCalledStatic   RelationshipKind = "called_static"
	RelationshipInheritance    RelationshipKind = "inheritance"
)

// RelationshipKinds lists every valid RelationshipKind.
var RelationshipKinds = []RelationshipKind{
	RelationshipNested,
	RelationshipFuncParameter,
	RelationshipProperty,
	RelationshipStaticProperty,
	RelationshipCalled,
	RelationshipCalledStatic,
	RelationshipInheritance,
}

// Valid reports whether k is one of the known relationship kinds.
func (k RelationshipKind) Valid() bool {
	return slices.Contains(RelationshipKinds, k)
}

// --- Models ---

// Entity is a declared struct, class, enum or protocol. Entities are plain
// comparable values: two entities are the same entity iff every field matches.
type Entity struct {
	Name string     `json:"name"` // fully-qualified, e.g. "Outer.Inner"
	Kind EntityKind `json:"kind"`
	Path string     `json:"path"`
	Size int        `json:"size"` // body length in bytes, 0 when unknown
}

// Relationship is a directed, typed edge from Object to Dependency.
// Before cleanup Dependency may hold raw type text such as "[String: Foo]".
type Relationship struct {
	Object     string           `json:"object"`
	Dependency string           `json:"dependency"`
	Kind       RelationshipKind `json:"type"`
	Path       string           `json:"path"`
}

// GraphStats summarizes a structure graph.
type GraphStats struct {
	EntityCount       int `json:"entityCount"`
	RelationshipCount int `json:"relationshipCount"`
	FileCount         int `json:"fileCount"`
	FailedFileCount   int `json:"failedFileCount"`
}

// DependencyChain is an ordered sequence of entity names forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// --- Sets ---

// EntitySet is a de-duplicating set of entities.
type EntitySet map[Entity]struct{}

// NewEntitySet returns a set holding the given entities.
func NewEntitySet(entities ...Entity) EntitySet {
	s := make(EntitySet, len(entities))
	for _, e := range entities {
		s.Add(e)
	}
	return s
}

// Add inserts e. Adding an identical entity twice is a no-op.
func (s EntitySet) Add(e Entity) { s[e] = struct{}{} }

// Has reports whether e is in the set.
func (s EntitySet) Has(e Entity) bool {
	_, ok := s[e]
	return ok
}

// Len returns the number of entities in the set.
func (s EntitySet) Len() int { return len(s) }

// Names returns the set of fully-qualified names present in s.
func (s EntitySet) Names() map[string]bool {
	names := make(map[string]bool, len(s))
	for e := range s {
		names[e.Name] = true
	}
	return names
}

// Sorted returns the entities ordered by name, kind, path and size.
func (s EntitySet) Sorted() []Entity {
	out := make([]Entity, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	slices.SortFunc(out, compareEntities)
	return out
}

// Equal reports whether s and other hold exactly the same entities.
func (s EntitySet) Equal(other EntitySet) bool {
	if len(s) != len(other) {
		return false
	}
	for e := range s {
		if !other.Has(e) {
			return false
		}
	}
	return true
}

// RelationshipSet is a de-duplicating set of relationships.
type RelationshipSet map[Relationship]struct{}

// NewRelationshipSet returns a set holding the given relationships.
func NewRelationshipSet(rels ...Relationship) RelationshipSet {
	s := make(RelationshipSet, len(rels))
	for _, r := range rels {
		s.Add(r)
	}
	return s
}

// Add inserts r. Adding an identical relationship twice is a no-op.
func (s RelationshipSet) Add(r Relationship) { s[r] = struct{}{} }

// Has reports whether r is in the set.
func (s RelationshipSet) Has(r Relationship) bool {
	_, ok := s[r]
	return ok
}

// Len returns the number of relationships in the set.
func (s RelationshipSet) Len() int { return len(s) }

// Sorted returns the relationships ordered by object, dependency, kind and path.
func (s RelationshipSet) Sorted() []Relationship {
	out := make([]Relationship, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRelationships)
	return out
}

// Equal reports whether s and other hold exactly the same relationships.
func (s RelationshipSet) Equal(other RelationshipSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

func compareEntities(a, b Entity) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Path, b.Path),
		cmp.Compare(a.Size, b.Size),
	)
}

func compareRelationships(a, b Relationship) int {
	return cmp.Or(
		cmp.Compare(a.Object, b.Object),
		cmp.Compare(a.Dependency, b.Dependency),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Path, b.Path),
	)
}
