package graph

import (
	"github.com/dusk-indust/structgraph/internal/structure"
)

// Walker turns a structure tree into entities and relationships.
// A Walker has no state of its own; all per-node state travels in the
// TraversalContext and all output goes to the Collector.
type Walker struct{}

// Extract walks the structure tree of file and returns its contribution.
func (w Walker) Extract(file string, root structure.Node) *Collector {
	c := NewCollector()
	w.Walk(NewTraversalContext(file), root, c)
	return c
}

// Walk visits node and its descendants.
func (w Walker) Walk(ctx TraversalContext, node structure.Node, c *Collector) {
	if node.Sequence {
		for _, item := range node.Items {
			w.Walk(ctx, item, c)
		}
		return
	}

	child := w.visit(ctx, node, c)

	for _, it := range node.InheritedTypes {
		c.RecordRelationship(ctx, node.Name, it, RelationshipInheritance)
	}

	for _, sub := range node.Children {
		w.Walk(child, sub, c)
	}
}

// visit dispatches a record node by kind and returns the context its
// children are walked with.
func (w Walker) visit(ctx TraversalContext, node structure.Node, c *Collector) TraversalContext {
	name := node.Name

	switch node.Kind {
	case structure.KindStruct, structure.KindClass:
		if name == "" {
			break
		}
		kind := EntityKindStruct
		if node.Kind == structure.KindClass {
			kind = EntityKindClass
		}
		full := ctx.ResolveFullName(name)
		c.RecordEntity(full, kind, ctx.File, node.BodyLength)
		c.RecordRelationship(ctx, "", full, RelationshipNested)
		return ctx.ChildScope(name)

	case structure.KindEnum:
		if name == "" {
			break
		}
		full := ctx.ResolveFullName(name)
		c.RecordRelationship(ctx, "", full, RelationshipNested)
		c.RecordEntity(full, EntityKindEnum, ctx.File, node.BodyLength)
		return ctx.ChildScope(name)

	case structure.KindProtocol:
		if name == "" {
			break
		}
		c.RecordEntity(ctx.ResolveFullName(name), EntityKindProtocol, ctx.File, node.BodyLength)
		return ctx.ChildScope(name)

	case structure.KindParameter:
		c.RecordRelationship(ctx, "", node.TypeName, RelationshipFuncParameter)

	case structure.KindInstanceVar:
		c.RecordRelationship(ctx, "", node.TypeName, RelationshipProperty)

	case structure.KindStaticVar, structure.KindClassVar:
		c.RecordRelationship(ctx, "", node.TypeName, RelationshipStaticProperty)

	case structure.KindCallExpression:
		prefix := LongestQualifiedPrefix(name)
		switch {
		case prefix == "":
		case prefix == name:
			c.RecordRelationship(ctx, "", prefix, RelationshipCalled)
		default:
			c.RecordRelationship(ctx, "", prefix, RelationshipCalledStatic)
		}
	}

	return ctx.Child()
}
