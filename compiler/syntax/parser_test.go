package syntax

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) *File {
	t.Helper()
	f, err := NewParser().Parse(context.Background(), "convex/test.ts", []byte(src))
	require.NoError(t, err)
	return f
}

func TestParseDeclarations(t *testing.T) {
	f := parseSource(t, `
import { v } from "convex/values";

const shared = v.string();
export const status = v.union(v.literal("on"), v.literal("off"));
`)
	assert.Equal(t, "test", f.Name)
	require.Len(t, f.Decls, 2)

	assert.Equal(t, "shared", f.Decls[0].Name)
	assert.False(t, f.Decls[0].Exported)
	assert.Equal(t, KindCall, f.Decls[0].Init.Kind)

	assert.Equal(t, "status", f.Decls[1].Name)
	assert.True(t, f.Decls[1].Exported)
	name, ok := f.Decls[1].Init.CalleeName()
	require.True(t, ok)
	assert.Equal(t, "union", name)
}

func TestParseExportDefault(t *testing.T) {
	f := parseSource(t, `
import { defineSchema } from "convex/server";
export default defineSchema({});
`)
	require.Len(t, f.Decls, 1)
	d := f.Decls[0]
	assert.True(t, d.Exported)
	assert.True(t, d.Default)
	assert.Empty(t, d.Name)
	name, ok := d.Init.CalleeName()
	require.True(t, ok)
	assert.Equal(t, "defineSchema", name)
}

func TestParseMemberChain(t *testing.T) {
	f := parseSource(t, `const t = defineTable({ body: v.string() }).index("by_body", ["body"]);`)
	require.Len(t, f.Decls, 1)

	// Outer call is .index(...), its callee spine descends to defineTable.
	call := f.Decls[0].Init
	require.Equal(t, KindCall, call.Kind)
	name, _ := call.CalleeName()
	assert.Equal(t, "index", name)
	require.Equal(t, KindMember, call.Callee.Kind)

	inner := call.Callee.Object
	require.Equal(t, KindCall, inner.Kind)
	name, _ = inner.CalleeName()
	assert.Equal(t, "defineTable", name)

	// Index arguments: string name plus field array.
	require.Len(t, call.Args, 2)
	assert.Equal(t, KindString, call.Args[0].Kind)
	assert.Equal(t, "by_body", call.Args[0].Str)
	require.Equal(t, KindArray, call.Args[1].Kind)
	assert.Equal(t, "body", call.Args[1].Elems[0].Str)
}

func TestParseLiterals(t *testing.T) {
	f := parseSource(t, `const x = { a: "s", b: 1_000.5, c: true, d: false, e: null, f: "" };`)
	obj := f.Decls[0].Init
	require.Equal(t, KindObject, obj.Kind)
	require.Len(t, obj.Props, 6)

	want := []struct {
		key  string
		kind NodeKind
	}{
		{"a", KindString}, {"b", KindNumber}, {"c", KindBool},
		{"d", KindBool}, {"e", KindNull}, {"f", KindString},
	}
	for i, w := range want {
		key, ok := obj.Props[i].KeyName()
		require.True(t, ok)
		assert.Equal(t, w.key, key)
		assert.Equal(t, w.kind, obj.Props[i].Value.Kind)
	}
	assert.Equal(t, "s", obj.Props[0].Value.Str)
	assert.Equal(t, 1000.5, obj.Props[1].Value.Num)
	assert.True(t, obj.Props[2].Value.Bool)
	assert.False(t, obj.Props[3].Value.Bool)
	assert.Equal(t, "", obj.Props[5].Value.Str)
}

func TestParseShorthandProperty(t *testing.T) {
	f := parseSource(t, `
const status = v.string();
const cols = { status };
`)
	obj := f.Decls[1].Init
	require.Equal(t, KindObject, obj.Kind)
	require.Len(t, obj.Props, 1)
	key, ok := obj.Props[0].KeyName()
	require.True(t, ok)
	assert.Equal(t, "status", key)
	// The value stays an identifier for the binding resolver.
	assert.Equal(t, KindIdent, obj.Props[0].Value.Kind)
	assert.Equal(t, "status", obj.Props[0].Value.Name)
}

func TestParseStringKeys(t *testing.T) {
	f := parseSource(t, `const x = { "quoted-key": v.string() };`)
	key, ok := f.Decls[0].Init.Props[0].KeyName()
	require.True(t, ok)
	assert.Equal(t, "quoted-key", key)
}

func TestParseTypeAnnotationsDropped(t *testing.T) {
	f := parseSource(t, `const x = v.string() as any;`)
	require.Len(t, f.Decls, 1)
	assert.Equal(t, KindCall, f.Decls[0].Init.Kind)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "empty.ts", []byte("   \n\t"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "broken.ts", []byte("const x = {"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailed)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "broken.ts")
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser().ParseFile(context.Background(), filepath.Join(t.TempDir(), "absent.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestParseFileReads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.ts")
	require.NoError(t, os.WriteFile(path, []byte(`export const x = v.string();`), 0o644))

	f, err := NewParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "messages", f.Name)
	assert.Equal(t, path, f.Path)
}

func TestParseCache(t *testing.T) {
	cache := NewMemoryCache()
	p := NewParser(WithCache(cache))
	src := []byte(`export const x = v.string();`)

	first, err := p.Parse(context.Background(), "a.ts", src)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	// Same content under another path hits the cache but keeps the new
	// path's identity.
	second, err := p.Parse(context.Background(), "b/c.ts", src)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, "c", second.Name)
	assert.Equal(t, "b/c.ts", second.Path)
	assert.Equal(t, first.Decls, second.Decls)
}

// Cached trees must be isolated: mutating one retrieval cannot leak into
// the next.
func TestMemoryCacheIsolation(t *testing.T) {
	cache := NewMemoryCache()
	f := &File{Name: "x", Path: "x.ts", Decls: []Decl{{Name: "a", Init: &Node{Kind: KindIdent, Name: "v"}}}}
	cache.Set("k", f)

	got, ok := cache.Get("k")
	require.True(t, ok)
	got.Decls[0].Init.Name = "mutated"

	again, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", again.Decls[0].Init.Name)
}

func TestHelperStubs(t *testing.T) {
	stubs := map[string]string{"./validators": `export const s = v.string();`}
	p := NewParser(WithHelperStubs(stubs))
	assert.Equal(t, stubs, p.HelperStubs())
}

func TestNodeClone(t *testing.T) {
	n := &Node{
		Kind:   KindCall,
		Callee: &Node{Kind: KindMember, Name: "string", Object: &Node{Kind: KindIdent, Name: "v"}},
		Args:   []*Node{{Kind: KindString, Str: "x"}},
	}
	c := n.Clone()
	require.Equal(t, n, c)
	assert.NotSame(t, n.Callee, c.Callee)
	c.Args[0].Str = "changed"
	assert.Equal(t, "x", n.Args[0].Str)
}
