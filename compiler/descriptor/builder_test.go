package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/convexgen/compiler/syntax"
)

func vcall(name string, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind: syntax.KindCall,
		Callee: &syntax.Node{
			Kind:   syntax.KindMember,
			Name:   name,
			Object: &syntax.Node{Kind: syntax.KindIdent, Name: "v"},
		},
		Args: args,
	}
}

func objArg(props ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindObject, Props: props}
}

func prop(name string, value *syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind:  syntax.KindProperty,
		Key:   &syntax.Node{Kind: syntax.KindIdent, Name: name},
		Value: value,
	}
}

func strArg(s string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindString, Str: s}
}

func TestBuildScalars(t *testing.T) {
	for name, want := range map[string]Kind{
		"null":    KindNull,
		"boolean": KindBoolean,
		"int64":   KindInt64,
		"number":  KindFloat64,
		"string":  KindString,
		"bytes":   KindBytes,
		"any":     KindAny,
	} {
		d, err := Build(vcall(name), NewContext("t"))
		require.NoError(t, err, name)
		assert.Equal(t, want, d.Kind)
	}
}

func TestBuildID(t *testing.T) {
	d, err := Build(vcall("id", strArg("users")), NewContext("t"))
	require.NoError(t, err)
	assert.Equal(t, KindID, d.Kind)
	assert.Equal(t, "users", d.Table)

	_, err = Build(vcall("id"), NewContext("t"))
	assert.Error(t, err)
}

func TestBuildLiteral(t *testing.T) {
	d, err := Build(vcall("literal", strArg("active")), NewContext("t"))
	require.NoError(t, err)
	assert.Equal(t, KindLiteral, d.Kind)
	assert.Equal(t, "active", d.Literal)

	d, err = Build(vcall("literal", &syntax.Node{Kind: syntax.KindNumber, Num: 3}), NewContext("t"))
	require.NoError(t, err)
	assert.Equal(t, float64(3), d.Literal)

	d, err = Build(vcall("literal", &syntax.Node{Kind: syntax.KindBool, Bool: true}), NewContext("t"))
	require.NoError(t, err)
	assert.Equal(t, true, d.Literal)

	_, err = Build(vcall("literal", objArg()), NewContext("t"))
	assert.Error(t, err)
}

// Two id calls with the same table are descriptor-equal regardless of
// where they came from; only the semantic payload is retained.
func TestBuildSemanticPayloadOnly(t *testing.T) {
	a, err := Build(vcall("id", strArg("users")), NewContext("a"))
	require.NoError(t, err)
	b, err := Build(vcall("id", strArg("users")), NewContext("b"))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := Build(vcall("id", strArg("messages")), NewContext("c"))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestBuildNested(t *testing.T) {
	node := vcall("object", objArg(
		prop("name", vcall("string")),
		prop("tags", vcall("array", vcall("string"))),
		prop("age", vcall("optional", vcall("int64"))),
		prop("meta", vcall("record", vcall("string"), vcall("any"))),
	))
	d, err := Build(node, NewContext("users"))
	require.NoError(t, err)
	require.Equal(t, KindObject, d.Kind)
	require.Len(t, d.Props, 4)

	assert.Equal(t, KindString, d.Props[0].Type.Kind)
	assert.Equal(t, KindArray, d.Props[1].Type.Kind)
	assert.Equal(t, KindString, d.Props[1].Type.Elem.Kind)
	assert.Equal(t, KindOptional, d.Props[2].Type.Kind)
	assert.Equal(t, KindInt64, d.Props[2].Type.Inner.Kind)
	assert.Equal(t, KindRecord, d.Props[3].Type.Kind)
	assert.Equal(t, KindAny, d.Props[3].Type.Value.Kind)
}

func TestBuildUnion(t *testing.T) {
	d, err := Build(vcall("union",
		vcall("literal", strArg("a")),
		vcall("literal", strArg("b")),
	), NewContext("t"))
	require.NoError(t, err)
	require.Equal(t, KindUnion, d.Kind)
	require.Len(t, d.Variants, 2)

	_, err = Build(vcall("union"), NewContext("t"))
	assert.Error(t, err)
}

func TestBuildInvalidType(t *testing.T) {
	_, err := Build(vcall("float"), NewContext("users"))
	require.Error(t, err)
	assert.True(t, IsInvalidType(err))
	assert.Contains(t, err.Error(), "float")
	assert.Contains(t, err.Error(), "int64")
	assert.Contains(t, err.Error(), "users")

	// Unknown constructors nested inside a valid one still fail.
	_, err = Build(vcall("array", vcall("decimal")), NewContext("users"))
	assert.True(t, IsInvalidType(err))
}

func TestBuildUnresolvedIdentifier(t *testing.T) {
	_, err := Build(&syntax.Node{Kind: syntax.KindIdent, Name: "shared"}, NewContext("t"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"shared"`)
}

// A nested object that lands on a structural path already on the stack is
// a cycle. Arrays repeating the same element shape are not.
func TestBuildCycleGuard(t *testing.T) {
	ctx := NewContext("t")
	require.NoError(t, ctx.pushObject())
	ctx.push("next")
	require.NoError(t, ctx.pushObject())

	// Re-entering a path still on the stack is a cycle.
	err := ctx.pushObject()
	require.Error(t, err)
	assert.True(t, IsCircularReference(err))
	var cerr *CircularReferenceError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"object", "next.object", "next.object"}, cerr.Chain)
}

func TestBuildArrayOfSameElement(t *testing.T) {
	elem := func() *syntax.Node {
		return vcall("object", objArg(prop("x", vcall("number"))))
	}
	node := vcall("array", vcall("union", elem(), elem()))
	_, err := Build(node, NewContext("t"))
	assert.NoError(t, err)
}
