package load

import (
	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/syntax"
)

// maxResolveDepth bounds transitive binding substitution. Chains deeper
// than this are left unresolved and surface later as structural errors,
// or as an any-fallback where the caller allows one.
const maxResolveDepth = 20

// Bindings maps top-level constant names to their initializer expressions.
// Helper stubs and local declarations both land here, so validator
// fragments shared between tables or functions resolve the same way.
type Bindings map[string]*syntax.Node

// CollectBindings gathers the named top-level declarations of the given
// files, in order. A later file rebinding a name shadows the earlier one.
func CollectBindings(files ...*syntax.File) Bindings {
	b := make(Bindings)
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, d := range f.Decls {
			if d.Name != "" && d.Init != nil {
				b[d.Name] = d.Init
			}
		}
	}
	return b
}

// Resolve returns a copy of node with identifier references substituted by
// their bound expressions, transitively. Property keys are structural and
// are never substituted, only property values. A binding that expands back
// into itself is a genuine cycle and is reported as a circular reference.
func (b Bindings) Resolve(node *syntax.Node) (*syntax.Node, error) {
	return b.resolve(node, 0, nil)
}

func (b Bindings) resolve(node *syntax.Node, depth int, chain []string) (*syntax.Node, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind == syntax.KindIdent {
		bound, ok := b[node.Name]
		if !ok {
			return node.Clone(), nil
		}
		for _, seen := range chain {
			if seen == node.Name {
				return nil, &descriptor.CircularReferenceError{
					Context: node.Name,
					Chain:   append(append([]string{}, chain...), node.Name),
				}
			}
		}
		if depth >= maxResolveDepth {
			return node.Clone(), nil
		}
		return b.resolve(bound, depth+1, append(chain, node.Name))
	}

	out := *node
	var err error
	if out.Object, err = b.resolve(node.Object, depth, chain); err != nil {
		return nil, err
	}
	if out.Callee, err = b.resolve(node.Callee, depth, chain); err != nil {
		return nil, err
	}
	if out.Value, err = b.resolve(node.Value, depth, chain); err != nil {
		return nil, err
	}
	// The key of a property names the property, it is never a reference.
	out.Key = node.Key.Clone()
	if out.Args, err = b.resolveAll(node.Args, depth, chain); err != nil {
		return nil, err
	}
	if out.Props, err = b.resolveAll(node.Props, depth, chain); err != nil {
		return nil, err
	}
	if out.Elems, err = b.resolveAll(node.Elems, depth, chain); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b Bindings) resolveAll(nodes []*syntax.Node, depth int, chain []string) ([]*syntax.Node, error) {
	if nodes == nil {
		return nil, nil
	}
	out := make([]*syntax.Node, len(nodes))
	for i, n := range nodes {
		r, err := b.resolve(n, depth, chain)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
