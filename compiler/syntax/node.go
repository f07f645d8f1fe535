// Package syntax turns Convex source documents into a small generic
// expression tree. It is the ingestion boundary of the generator: everything
// downstream (binding resolution, extraction, descriptor building) operates
// on Node values and never sees the underlying parser.
package syntax

// NodeKind identifies the shape of a Node.
type NodeKind uint8

// The closed set of node kinds the extraction layer understands. Anything
// the parser cannot map onto this set becomes KindOther and is ignored or
// rejected downstream, depending on where it shows up.
const (
	KindOther NodeKind = iota
	KindIdent
	KindMember
	KindCall
	KindObject
	KindProperty
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k NodeKind) String() string {
	switch k {
	case KindIdent:
		return "identifier"
	case KindMember:
		return "member"
	case KindCall:
		return "call"
	case KindObject:
		return "object"
	case KindProperty:
		return "property"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "other"
	}
}

type (
	// Node is one expression in a source document. It is a tagged variant:
	// which fields are meaningful depends on Kind. Nodes are treated as
	// immutable after parsing; the binding resolver substitutes by cloning.
	Node struct {
		Kind NodeKind `msgpack:"k"`

		// Name is the identifier name (KindIdent) or the member property
		// name (KindMember).
		Name string `msgpack:"n,omitempty"`

		// Object is the receiver spine of a member expression,
		// e.g. the `defineTable({...}).index(...)` chain.
		Object *Node `msgpack:"o,omitempty"`

		// Callee and Args describe a call expression.
		Callee *Node   `msgpack:"c,omitempty"`
		Args   []*Node `msgpack:"a,omitempty"`

		// Props holds the KindProperty children of an object literal,
		// in declaration order.
		Props []*Node `msgpack:"p,omitempty"`

		// Key and Value belong to KindProperty. Key is structural and is
		// never substituted by the binding resolver.
		Key   *Node `msgpack:"ky,omitempty"`
		Value *Node `msgpack:"v,omitempty"`

		// Elems holds the elements of an array literal.
		Elems []*Node `msgpack:"e,omitempty"`

		// Literal payloads.
		Str  string  `msgpack:"s,omitempty"`
		Num  float64 `msgpack:"f,omitempty"`
		Bool bool    `msgpack:"b,omitempty"`
	}

	// Decl is a top-level declaration or expression statement of a File.
	Decl struct {
		// Name of the declared constant. Empty for default exports and
		// bare expression statements.
		Name string `msgpack:"n,omitempty"`
		// Exported reports whether the declaration carries `export`.
		Exported bool `msgpack:"x,omitempty"`
		// Default reports an `export default` declaration.
		Default bool `msgpack:"d,omitempty"`
		// Init is the initializer (or the expression itself).
		Init *Node `msgpack:"i,omitempty"`
	}

	// File is the parsed form of one source document.
	File struct {
		// Name is the base file name without its extension,
		// e.g. "messages" for convex/messages.ts.
		Name string `msgpack:"n"`
		// Path is the path the file was read from.
		Path string `msgpack:"p"`
		// Decls are the top-level statements in source order.
		Decls []Decl `msgpack:"d"`
	}
)

// KeyName returns the property name of a KindProperty node. Identifier and
// string keys are both supported (`{foo: ...}` and `{"foo": ...}`).
func (n *Node) KeyName() (string, bool) {
	if n == nil || n.Kind != KindProperty || n.Key == nil {
		return "", false
	}
	switch n.Key.Kind {
	case KindIdent:
		return n.Key.Name, true
	case KindString:
		return n.Key.Str, true
	}
	return "", false
}

// CalleeName returns the trailing name of a call's callee: the identifier
// for `defineTable(...)`, the member property for `v.string()`.
func (n *Node) CalleeName() (string, bool) {
	if n == nil || n.Kind != KindCall || n.Callee == nil {
		return "", false
	}
	switch n.Callee.Kind {
	case KindIdent:
		return n.Callee.Name, true
	case KindMember:
		return n.Callee.Name, true
	}
	return "", false
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Object = n.Object.Clone()
	out.Callee = n.Callee.Clone()
	out.Key = n.Key.Clone()
	out.Value = n.Value.Clone()
	out.Args = cloneNodes(n.Args)
	out.Props = cloneNodes(n.Props)
	out.Elems = cloneNodes(n.Elems)
	return &out
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
