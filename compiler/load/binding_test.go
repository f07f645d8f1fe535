package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/syntax"
)

func ident(name string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindIdent, Name: name}
}

func vcall(name string, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind: syntax.KindCall,
		Callee: &syntax.Node{
			Kind:   syntax.KindMember,
			Name:   name,
			Object: ident("v"),
		},
		Args: args,
	}
}

func call(callee string, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind:   syntax.KindCall,
		Callee: ident(callee),
		Args:   args,
	}
}

func obj(props ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindObject, Props: props}
}

func prop(name string, value *syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind:  syntax.KindProperty,
		Key:   ident(name),
		Value: value,
	}
}

func str(s string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindString, Str: s}
}

func TestCollectBindings(t *testing.T) {
	f := &syntax.File{
		Name: "schema",
		Decls: []syntax.Decl{
			{Name: "shared", Init: vcall("string")},
			{Name: "", Init: call("defineSchema", obj())},
			{Name: "other", Exported: true, Init: vcall("int64")},
		},
	}
	b := CollectBindings(f)
	assert.Len(t, b, 2)
	assert.Contains(t, b, "shared")
	assert.Contains(t, b, "other")
}

func TestResolveSubstitutes(t *testing.T) {
	b := Bindings{
		"status": vcall("union", vcall("literal", str("a")), vcall("literal", str("b"))),
		"alias":  ident("status"),
	}

	// Direct and transitive references resolve to the bound expression.
	for _, name := range []string{"status", "alias"} {
		r, err := b.Resolve(ident(name))
		require.NoError(t, err)
		callee, ok := r.CalleeName()
		require.True(t, ok)
		assert.Equal(t, "union", callee)
	}

	// Unbound identifiers pass through untouched.
	r, err := b.Resolve(ident("unknown"))
	require.NoError(t, err)
	assert.Equal(t, syntax.KindIdent, r.Kind)
	assert.Equal(t, "unknown", r.Name)
}

// A property named like a binding must keep its name: only values are
// references, keys are structural.
func TestResolveNeverSubstitutesKeys(t *testing.T) {
	b := Bindings{"status": vcall("string")}
	node := vcall("object", obj(prop("status", ident("status"))))

	r, err := b.Resolve(node)
	require.NoError(t, err)
	p := r.Args[0].Props[0]
	name, ok := p.KeyName()
	require.True(t, ok)
	assert.Equal(t, "status", name)
	callee, ok := p.Value.CalleeName()
	require.True(t, ok)
	assert.Equal(t, "string", callee)
}

func TestResolveDepthBound(t *testing.T) {
	// a0 -> a1 -> ... -> a30 -> v.string(). Deeper than the bound, so the
	// tail is left unresolved rather than looping forever.
	b := Bindings{"a30": vcall("string")}
	for i := 0; i < 30; i++ {
		b[named(i)] = ident(named(i + 1))
	}
	r, err := b.Resolve(ident("a0"))
	require.NoError(t, err)
	assert.Equal(t, syntax.KindIdent, r.Kind)
}

func named(i int) string {
	return "a" + string(rune('0'+i/10)) + string(rune('0'+i%10))
}

func TestResolveCycle(t *testing.T) {
	b := Bindings{
		"node": vcall("object", obj(prop("next", ident("node")))),
	}
	_, err := b.Resolve(ident("node"))
	require.Error(t, err)
	assert.True(t, descriptor.IsCircularReference(err))
	var cerr *descriptor.CircularReferenceError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"node", "node"}, cerr.Chain)

	// Mutual recursion reports the whole chain.
	b = Bindings{
		"a": vcall("object", obj(prop("b", ident("b")))),
		"b": vcall("object", obj(prop("a", ident("a")))),
	}
	_, err = b.Resolve(ident("a"))
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"a", "b", "a"}, cerr.Chain)
}

// Resolution never mutates the bound expressions or the input.
func TestResolveClones(t *testing.T) {
	bound := vcall("string")
	b := Bindings{"shared": bound}
	r, err := b.Resolve(ident("shared"))
	require.NoError(t, err)
	require.NotSame(t, bound, r)
	r.Callee.Name = "mutated"
	assert.Equal(t, "string", bound.Callee.Name)
}
