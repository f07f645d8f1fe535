package gen

import (
	"fmt"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/convexgen/compiler/descriptor"
)

const (
	runtimePkg = "github.com/syssam/convexgen/convex"
	jsonPkg    = "github.com/goccy/go-json"
)

// typeBuilder lowers descriptors into Go type expressions, emitting named
// declarations into the output file as it goes. One builder serves one
// generated file, so name allocation and helper emission are file-scoped.
type typeBuilder struct {
	f     *jen.File
	names map[string]bool
	needs struct {
		unit         bool
		result       bool
		subscription bool
		tagged       bool
	}
}

func newTypeBuilder(f *jen.File) *typeBuilder {
	return &typeBuilder{f: f, names: make(map[string]bool)}
}

// declare reserves a type name. A taken name gets a numeric suffix: the
// second Object under the same context becomes Object2, then Object3.
func (b *typeBuilder) declare(base string) string {
	if base == "" {
		base = "Anonymous"
	}
	name := base
	for i := 2; b.names[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	b.names[name] = true
	return name
}

// goType returns the Go type expression for d. hint is the path-qualified
// name a named declaration takes if one has to be emitted.
func (b *typeBuilder) goType(d *descriptor.Descriptor, hint string) (jen.Code, error) {
	switch d.Kind {
	case descriptor.KindNull:
		b.needs.unit = true
		return jen.Id("Unit"), nil
	case descriptor.KindBoolean:
		return jen.Bool(), nil
	case descriptor.KindInt64:
		return jen.Int64(), nil
	case descriptor.KindFloat64:
		return jen.Float64(), nil
	case descriptor.KindString, descriptor.KindID:
		return jen.String(), nil
	case descriptor.KindBytes:
		return jen.Index().Byte(), nil
	case descriptor.KindAny:
		return jen.Qual(runtimePkg, "Value"), nil
	case descriptor.KindLiteral:
		switch d.Literal.(type) {
		case string:
			return jen.String(), nil
		case float64:
			return jen.Float64(), nil
		case bool:
			return jen.Bool(), nil
		}
		return nil, NewGenerationError(hint, fmt.Sprintf("unsupported literal %v", d.Literal), nil)
	case descriptor.KindOptional:
		inner, err := b.goType(d.Inner, hint)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	case descriptor.KindArray:
		elem, err := b.goType(d.Elem, hint)
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case descriptor.KindRecord:
		key, err := b.goType(d.Key, hint+"Key")
		if err != nil {
			return nil, err
		}
		value, err := b.goType(d.Value, hint+"Value")
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(value), nil
	case descriptor.KindObject:
		// An open object carries no property information to type.
		if len(d.Props) == 0 {
			return jen.Qual(runtimePkg, "Value"), nil
		}
		name, err := b.emitStruct(hint, d.Props)
		if err != nil {
			return nil, err
		}
		return jen.Id(name), nil
	case descriptor.KindUnion:
		return b.unionType(d, hint)
	default:
		return nil, NewGenerationError(hint, fmt.Sprintf("cannot map %s to a Go type", d.Kind), nil)
	}
}

// fieldType resolves a struct field's type, unwrapping a top-level
// optional into a pointer with omitempty semantics.
func (b *typeBuilder) fieldType(d *descriptor.Descriptor, hint string) (code jen.Code, optional bool, err error) {
	if d.Kind == descriptor.KindOptional {
		code, err = b.goType(d.Inner, hint)
		return code, true, err
	}
	code, err = b.goType(d, hint)
	return code, false, err
}

// structField renders one struct field with its json tag. Optional fields
// become pointers with omitempty.
func (b *typeBuilder) structField(p descriptor.Prop, hint string) (jen.Code, error) {
	fieldName := pascal(p.Name)
	code, optional, err := b.fieldType(p.Type, hint+fieldName)
	if err != nil {
		return nil, err
	}
	tag := p.Name
	field := jen.Id(fieldName)
	if optional {
		field = field.Op("*")
		tag += ",omitempty"
	}
	return field.Add(code).Tag(map[string]string{"json": tag}), nil
}

// emitStruct declares a named struct for an object descriptor and returns
// the allocated name.
func (b *typeBuilder) emitStruct(hint string, props []descriptor.Prop) (string, error) {
	name := b.declare(hint)
	fields := make([]jen.Code, 0, len(props))
	for _, p := range props {
		field, err := b.structField(p, hint)
		if err != nil {
			return "", err
		}
		fields = append(fields, field)
	}
	b.f.Type().Id(name).Struct(fields...)
	return name, nil
}

func (b *typeBuilder) unionType(d *descriptor.Descriptor, hint string) (jen.Code, error) {
	info := classifyUnion(d)
	switch info.Shape {
	case shapeNullable:
		inner, err := b.goType(info.Inner, hint)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	case shapeLiteralEnum:
		return jen.Id(b.emitEnum(hint, info.Literals)), nil
	case shapeResult:
		b.needs.result = true
		okT, err := b.goType(info.Ok, hint+"Ok")
		if err != nil {
			return nil, err
		}
		errT, err := b.goType(info.Err, hint+"Err")
		if err != nil {
			return nil, err
		}
		return jen.Id("Result").Index(jen.List(okT, errT)), nil
	case shapeTagged:
		name, err := b.emitTagged(hint, info.Tagged)
		if err != nil {
			return nil, err
		}
		return jen.Id(name), nil
	default:
		name, err := b.emitUntagged(hint, info.Variants)
		if err != nil {
			return nil, err
		}
		return jen.Id(name), nil
	}
}

// emitEnum declares a string type with one constant per literal value. The
// constants carry the exact source values; only their names are reshaped.
func (b *typeBuilder) emitEnum(hint string, values []string) string {
	name := b.declare(hint)
	b.f.Type().Id(name).String()
	used := make(map[string]bool)
	b.f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range values {
			constName := name + pascal(v)
			if constName == name {
				constName = name + "Empty"
			}
			for i := 2; used[constName]; i++ {
				constName = name + pascal(v) + strconv.Itoa(i)
			}
			used[constName] = true
			g.Id(constName).Id(name).Op("=").Lit(v)
		}
	})
	return name
}

// emitTagged declares a discriminated union: one struct per arm, a wrapper
// holding a pointer per arm, and JSON methods switching on the "type" key.
func (b *typeBuilder) emitTagged(hint string, arms []taggedVariant) (string, error) {
	b.needs.tagged = true
	name := b.declare(hint)

	type armInfo struct {
		tag        string
		field      string
		structName string
	}
	infos := make([]armInfo, 0, len(arms))
	usedFields := make(map[string]bool)
	for _, arm := range arms {
		field := pascal(arm.Tag)
		for i := 2; usedFields[field]; i++ {
			field = pascal(arm.Tag) + strconv.Itoa(i)
		}
		usedFields[field] = true
		structName := b.declare(name + field)
		fields := make([]jen.Code, 0, len(arm.Props))
		for _, p := range arm.Props {
			f, err := b.structField(p, structName)
			if err != nil {
				return "", err
			}
			fields = append(fields, f)
		}
		b.f.Type().Id(structName).Struct(fields...)
		infos = append(infos, armInfo{tag: arm.Tag, field: field, structName: structName})
	}

	b.f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, a := range infos {
			g.Id(a.field).Op("*").Id(a.structName).Tag(map[string]string{"json": "-"})
		}
	})

	recv := receiver(name)
	b.f.Func().Params(jen.Id(recv).Id(name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Switch().BlockFunc(func(s *jen.Group) {
			for _, a := range infos {
				s.Case(jen.Id(recv).Dot(a.field).Op("!=").Nil()).Block(
					jen.Return(jen.Id("marshalTagged").Call(jen.Lit(a.tag), jen.Id(recv).Dot(a.field))),
				)
			}
		})
		g.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(name+": no variant set")))
	})

	b.f.Func().Params(jen.Id(recv).Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		g.Var().Id("head").Struct(jen.Id("Type").String().Tag(map[string]string{"json": "type"}))
		g.If(
			jen.Err().Op(":=").Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("head")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err()))
		g.Switch(jen.Id("head").Dot("Type")).BlockFunc(func(s *jen.Group) {
			for _, a := range infos {
				s.Case(jen.Lit(a.tag)).Block(
					jen.Id(recv).Dot(a.field).Op("=").New(jen.Id(a.structName)),
					jen.Return(jen.Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Id(recv).Dot(a.field))),
				)
			}
			s.Default().Block(
				jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(name+": unknown type %q"), jen.Id("head").Dot("Type"))),
			)
		})
	})
	return name, nil
}

func variantFieldBase(d *descriptor.Descriptor) string {
	switch d.Kind {
	case descriptor.KindNull:
		return "Null"
	case descriptor.KindBoolean:
		return "Bool"
	case descriptor.KindInt64:
		return "Int64"
	case descriptor.KindFloat64:
		return "Float64"
	case descriptor.KindString:
		return "String"
	case descriptor.KindBytes:
		return "Bytes"
	case descriptor.KindID:
		return "ID"
	case descriptor.KindLiteral:
		return "Literal"
	case descriptor.KindArray:
		return "Array"
	case descriptor.KindObject:
		return "Object"
	case descriptor.KindRecord:
		return "Record"
	case descriptor.KindUnion:
		return "Union"
	default:
		return "Any"
	}
}

// emitUntagged declares the fallback union wrapper: one pointer field per
// variant, marshaling whichever is set and unmarshaling by trying each
// variant in declaration order. A null variant is matched against the
// literal null token before any variant trial, since unmarshaling null
// into a non-pointer target succeeds without touching it.
func (b *typeBuilder) emitUntagged(hint string, variants []*descriptor.Descriptor) (string, error) {
	name := b.declare(hint)

	type varInfo struct {
		field  string
		code   jen.Code
		isNull bool
	}
	infos := make([]varInfo, 0, len(variants))
	usedFields := make(map[string]bool)
	for _, v := range variants {
		base := variantFieldBase(v)
		field := base
		for i := 2; usedFields[field]; i++ {
			field = base + strconv.Itoa(i)
		}
		usedFields[field] = true
		if v.Kind == descriptor.KindNull {
			b.needs.unit = true
			infos = append(infos, varInfo{field: field, code: jen.Id("Unit"), isNull: true})
			continue
		}
		code, err := b.goType(v, name+field)
		if err != nil {
			return "", err
		}
		infos = append(infos, varInfo{field: field, code: code})
	}

	b.f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, v := range infos {
			g.Id(v.field).Op("*").Add(v.code).Tag(map[string]string{"json": "-"})
		}
	})

	recv := receiver(name)
	b.f.Func().Params(jen.Id(recv).Id(name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Switch().BlockFunc(func(s *jen.Group) {
			for _, v := range infos {
				cond := jen.Id(recv).Dot(v.field).Op("!=").Nil()
				if v.isNull {
					s.Case(cond).Block(jen.Return(jen.Index().Byte().Parens(jen.Lit("null")), jen.Nil()))
					continue
				}
				s.Case(cond).Block(
					jen.Return(jen.Qual(jsonPkg, "Marshal").Call(jen.Op("*").Id(recv).Dot(v.field))),
				)
			}
		})
		g.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(name+": no variant set")))
	})

	b.f.Func().Params(jen.Id(recv).Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		g.Op("*").Id(recv).Op("=").Id(name).Values()
		for _, v := range infos {
			if v.isNull {
				g.If(jen.String().Parens(jen.Id("data")).Op("==").Lit("null")).Block(
					jen.Id(recv).Dot(v.field).Op("=").Op("&").Id("Unit").Values(),
					jen.Return(jen.Nil()),
				)
			}
		}
		for _, v := range infos {
			if v.isNull {
				continue
			}
			varName := "v" + v.field
			g.BlockFunc(func(inner *jen.Group) {
				inner.Var().Id(varName).Add(v.code)
				inner.If(
					jen.Err().Op(":=").Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id(varName)),
					jen.Err().Op("==").Nil(),
				).Block(
					jen.Id(recv).Dot(v.field).Op("=").Op("&").Id(varName),
					jen.Return(jen.Nil()),
				)
			})
		}
		g.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(name + ": no variant matched")))
	})
	return name, nil
}
