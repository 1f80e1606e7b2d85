package graph

// PassReport records how one cleanup pass changed the relationship count.
type PassReport struct {
	Name   string `json:"name"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Removed returns Before - After. It is negative when a pass added edges.
func (r PassReport) Removed() int {
	return r.Before - r.After
}

// Pass names, in execution order.
const (
	PassSplitTypeReferences = "split_type_references"
	PassPruneOutsideIndex   = "prune_outside_index"
	PassRemoveSelfEdges     = "remove_self_edges"
)

// Cleanup normalizes rels against index by running, in order:
//  1. SplitTypeReferences
//  2. PruneOutsideIndex
//  3. RemoveSelfEdges
//
// Splitting must come first because it both creates and removes edges the
// other two passes inspect. The input set is not modified.
func Cleanup(index EntitySet, rels RelationshipSet) (RelationshipSet, []PassReport) {
	reports := make([]PassReport, 0, 3)

	run := func(name string, in RelationshipSet, pass func(RelationshipSet) RelationshipSet) RelationshipSet {
		out := pass(in)
		reports = append(reports, PassReport{Name: name, Before: in.Len(), After: out.Len()})
		return out
	}

	names := index.Names()
	out := run(PassSplitTypeReferences, rels, SplitTypeReferences)
	out = run(PassPruneOutsideIndex, out, func(s RelationshipSet) RelationshipSet {
		return PruneOutsideIndex(names, s)
	})
	out = run(PassRemoveSelfEdges, out, RemoveSelfEdges)
	return out, reports
}

// SplitTypeReferences replaces every relationship with one relationship per
// type name found in its Dependency text. Relationships whose text holds no
// type name disappear.
func SplitTypeReferences(rels RelationshipSet) RelationshipSet {
	out := make(RelationshipSet, len(rels))
	for r := range rels {
		for _, ref := range TypeReferences(r.Dependency) {
			split := r
			split.Dependency = ref
			out.Add(split)
		}
	}
	return out
}

// PruneOutsideIndex drops relationships whose endpoints are not both
// declared entity names.
func PruneOutsideIndex(names map[string]bool, rels RelationshipSet) RelationshipSet {
	out := make(RelationshipSet, len(rels))
	for r := range rels {
		if names[r.Object] && names[r.Dependency] {
			out.Add(r)
		}
	}
	return out
}

// RemoveSelfEdges drops relationships whose endpoints coincide.
func RemoveSelfEdges(rels RelationshipSet) RelationshipSet {
	out := make(RelationshipSet, len(rels))
	for r := range rels {
		if r.Object != r.Dependency {
			out.Add(r)
		}
	}
	return out
}
