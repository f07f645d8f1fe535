package descriptor

import (
	"strconv"
	"strings"

	"github.com/syssam/convexgen/compiler/syntax"
)

// ValidTypes is the full set of recognized validator constructors. The set
// is closed: anything outside it is a hard error, never passed through.
var ValidTypes = []string{
	"id", "null", "int64", "number", "boolean", "string", "bytes",
	"array", "object", "record", "union", "literal", "optional", "any",
}

func validType(name string) bool {
	for _, t := range ValidTypes {
		if t == name {
			return true
		}
	}
	return false
}

// Context threads the naming scope and the cycle guard through one build.
// A fresh Context is created per column, argument or return expression.
type Context struct {
	scope string
	path  []string
	stack []stackEntry
}

type stackEntry struct {
	kind string
	path string
}

// NewContext creates a build context for the given scope, e.g. a table name
// or a "file:function" pair. The scope appears in error messages only.
func NewContext(scope string) *Context {
	return &Context{scope: scope}
}

// Path returns the current structural path, for error context.
func (c *Context) Path() string {
	if len(c.path) == 0 {
		return c.scope
	}
	return c.scope + ":" + strings.Join(c.path, ".")
}

func (c *Context) push(segment string) { c.path = append(c.path, segment) }
func (c *Context) pop()                { c.path = c.path[:len(c.path)-1] }

// pushObject records an object node on the cycle stack. Only objects are
// tracked: arrays and unions may legitimately repeat a nominal shape
// without being a true cycle.
func (c *Context) pushObject() error {
	full := "object"
	if len(c.path) > 0 {
		full = strings.Join(c.path, ".") + ".object"
	}
	for _, e := range c.stack {
		if e.path == full {
			chain := make([]string, 0, len(c.stack)+1)
			for _, s := range c.stack {
				chain = append(chain, s.path)
			}
			chain = append(chain, full)
			return &CircularReferenceError{Context: c.scope, Chain: chain}
		}
	}
	c.stack = append(c.stack, stackEntry{kind: "object", path: full})
	return nil
}

func (c *Context) popObject() {
	if n := len(c.stack); n > 0 && c.stack[n-1].kind == "object" {
		c.stack = c.stack[:n-1]
	}
}

// Build interprets one resolved validator call chain into a Descriptor.
// The node must already be fully resolved through the binding table; an
// identifier left over at this point is a structural error (callers decide
// where the any-fallback applies before getting here).
func Build(node *syntax.Node, ctx *Context) (*Descriptor, error) {
	if node == nil {
		return nil, &StructureError{Context: ctx.Path(), Message: "missing validator expression"}
	}
	if node.Kind == syntax.KindIdent {
		return nil, &StructureError{Context: ctx.Path(), Message: "unresolved identifier " + strconv.Quote(node.Name)}
	}
	name, ok := node.CalleeName()
	if !ok {
		return nil, &StructureError{Context: ctx.Path(), Message: "expected a validator call, got " + node.Kind.String()}
	}
	if !validType(name) {
		return nil, &InvalidTypeError{Found: name, Context: ctx.Path(), Valid: ValidTypes}
	}

	switch name {
	case "null":
		return Null(), nil
	case "boolean":
		return Boolean(), nil
	case "int64":
		return Int64(), nil
	case "number":
		return Float64(), nil
	case "string":
		return String(), nil
	case "bytes":
		return Bytes(), nil
	case "any":
		return Any(), nil

	case "id":
		// Only the semantic table name is retained, so two id("t") calls
		// at different source positions are descriptor-equal.
		if len(node.Args) == 0 || node.Args[0] == nil || node.Args[0].Kind != syntax.KindString {
			return nil, &StructureError{Context: ctx.Path(), Message: "id requires a table name string"}
		}
		return ID(node.Args[0].Str), nil

	case "literal":
		if len(node.Args) == 0 || node.Args[0] == nil {
			return nil, &StructureError{Context: ctx.Path(), Message: "literal requires a value"}
		}
		switch arg := node.Args[0]; arg.Kind {
		case syntax.KindString:
			return Literal(arg.Str), nil
		case syntax.KindNumber:
			return Literal(arg.Num), nil
		case syntax.KindBool:
			return Literal(arg.Bool), nil
		default:
			return nil, &StructureError{Context: ctx.Path(), Message: "literal value must be a string, number or boolean"}
		}

	case "optional":
		if len(node.Args) == 0 {
			return nil, &StructureError{Context: ctx.Path(), Message: "optional requires an inner type"}
		}
		ctx.push("inner")
		inner, err := Build(node.Args[0], ctx)
		ctx.pop()
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil

	case "array":
		if len(node.Args) == 0 {
			return nil, &StructureError{Context: ctx.Path(), Message: "array requires an element type"}
		}
		ctx.push("elements")
		elem, err := Build(node.Args[0], ctx)
		ctx.pop()
		if err != nil {
			return nil, err
		}
		return Array(elem), nil

	case "object":
		if len(node.Args) == 0 || node.Args[0] == nil || node.Args[0].Kind != syntax.KindObject {
			return nil, &StructureError{Context: ctx.Path(), Message: "object requires a property map"}
		}
		if err := ctx.pushObject(); err != nil {
			return nil, err
		}
		defer ctx.popObject()
		props := make([]Prop, 0, len(node.Args[0].Props))
		for _, prop := range node.Args[0].Props {
			pname, ok := prop.KeyName()
			if !ok {
				return nil, &StructureError{Context: ctx.Path(), Message: "invalid object property name"}
			}
			ctx.push(pname)
			pt, err := Build(prop.Value, ctx)
			ctx.pop()
			if err != nil {
				return nil, err
			}
			props = append(props, Prop{Name: pname, Type: pt})
		}
		return Object(props...), nil

	case "record":
		if len(node.Args) < 2 {
			return nil, &StructureError{Context: ctx.Path(), Message: "record requires key and value types"}
		}
		ctx.push("keyType")
		key, err := Build(node.Args[0], ctx)
		ctx.pop()
		if err != nil {
			return nil, err
		}
		ctx.push("valueType")
		value, err := Build(node.Args[1], ctx)
		ctx.pop()
		if err != nil {
			return nil, err
		}
		return Record(key, value), nil

	case "union":
		if len(node.Args) == 0 {
			return nil, &StructureError{Context: ctx.Path(), Message: "union requires at least one variant"}
		}
		variants := make([]*Descriptor, 0, len(node.Args))
		for i, arg := range node.Args {
			ctx.push("variant_" + strconv.Itoa(i))
			v, err := Build(arg, ctx)
			ctx.pop()
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		return Union(variants...), nil
	}

	// validType and the switch above cover the same set.
	return nil, &InvalidTypeError{Found: name, Context: ctx.Path(), Valid: ValidTypes}
}
