package graph

// TraversalContext is the per-node state threaded through a structure walk.
// It is a value: deriving a child never affects the parent or siblings.
type TraversalContext struct {
	File        string // path of the file being walked
	Depth       int
	Declaration string // fully-qualified enclosing declaration, "" at file scope
}

// NewTraversalContext returns the root context for file.
func NewTraversalContext(file string) TraversalContext {
	return TraversalContext{File: file}
}

// ResolveFullName qualifies local with the enclosing declaration, if any.
func (c TraversalContext) ResolveFullName(local string) string {
	if c.Declaration == "" {
		return local
	}
	return c.Declaration + "." + local
}

// Child returns the context for a node that does not open a declaration scope.
func (c TraversalContext) Child() TraversalContext {
	c.Depth++
	return c
}

// ChildScope returns the context for the children of a declaration named local.
func (c TraversalContext) ChildScope(local string) TraversalContext {
	c.Declaration = c.ResolveFullName(local)
	c.Depth++
	return c
}
