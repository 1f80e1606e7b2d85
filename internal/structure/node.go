package structure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedStructure is returned when a structure document is not valid
// JSON or contains a value that is neither a node sequence nor a record.
var ErrMalformedStructure = errors.New("malformed structure")

// SourceKitten declaration and expression kinds consumed by the walker.
const (
	KindStruct         = "source.lang.swift.decl.struct"
	KindClass          = "source.lang.swift.decl.class"
	KindEnum           = "source.lang.swift.decl.enum"
	KindProtocol       = "source.lang.swift.decl.protocol"
	KindParameter      = "source.lang.swift.decl.var.parameter"
	KindInstanceVar    = "source.lang.swift.decl.var.instance"
	KindStaticVar      = "source.lang.swift.decl.var.static"
	KindClassVar       = "source.lang.swift.decl.var.class"
	KindCallExpression = "source.lang.swift.expr.call"
)

// Node is one element of a structure tree: either a sequence of nodes or a
// record describing a declaration or expression.
type Node struct {
	Sequence bool
	Items    []Node // set when Sequence is true

	Kind           string
	Name           string
	TypeName       string
	InheritedTypes []string
	BodyLength     int
	HasBodyLength  bool
	Children       []Node
}

// IsEmpty reports whether n carries no record data and no items.
func (n Node) IsEmpty() bool {
	return !n.Sequence && n.Kind == "" && n.Name == "" && len(n.Children) == 0
}

// record mirrors the SourceKitten keys the walker cares about. Everything
// else in the document (offsets, attributes, diagnostics) is ignored.
type record struct {
	Kind      string `json:"key.kind"`
	Name      string `json:"key.name"`
	TypeName  string `json:"key.typename"`
	Inherited []struct {
		Name string `json:"key.name"`
	} `json:"key.inheritedtypes"`
	BodyLength   *int   `json:"key.bodylength"`
	Substructure []Node `json:"key.substructure"`
}

// UnmarshalJSON decodes either a JSON array (sequence) or object (record).
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty node", ErrMalformedStructure)
	}

	switch data[0] {
	case 'n':
		// null decodes to an empty node.
		if bytes.Equal(data, []byte("null")) {
			*n = Node{}
			return nil
		}
	case '[':
		var items []Node
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*n = Node{Sequence: true, Items: items}
		return nil
	case '{':
		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		node := Node{
			Kind:     r.Kind,
			Name:     r.Name,
			TypeName: r.TypeName,
			Children: r.Substructure,
		}
		for _, it := range r.Inherited {
			if it.Name != "" {
				node.InheritedTypes = append(node.InheritedTypes, it.Name)
			}
		}
		if r.BodyLength != nil {
			node.BodyLength = *r.BodyLength
			node.HasBodyLength = true
		}
		*n = node
		return nil
	}
	return fmt.Errorf("%w: unexpected node value %.20q", ErrMalformedStructure, data)
}

// Decode parses a structure document. Every failure wraps ErrMalformedStructure.
func Decode(data []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		if errors.Is(err, ErrMalformedStructure) {
			return Node{}, err
		}
		return Node{}, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return n, nil
}
