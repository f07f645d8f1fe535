package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/load"
)

// genClient generates the Client wrapper the typed function methods hang
// off.
func genClient(b *typeBuilder) {
	f := b.f
	f.Comment("Client invokes the deployment's functions with typed arguments and results.")
	f.Type().Id("Client").Struct(
		jen.Id("caller").Qual(runtimePkg, "Caller"),
	)
	f.Comment("NewClient wraps a transport in the generated surface.")
	f.Func().Id("NewClient").Params(jen.Id("caller").Qual(runtimePkg, "Caller")).Op("*").Id("Client").Block(
		jen.Return(jen.Op("&").Id("Client").Values(jen.Dict{jen.Id("caller"): jen.Id("caller")})),
	)
}

// callRoute returns the Caller method a function kind is invoked through.
func callRoute(k load.FunctionKind) string {
	switch k {
	case load.KindQuery, load.KindInternalQuery:
		return "Query"
	case load.KindMutation, load.KindInternalMutation:
		return "Mutation"
	default:
		return "Action"
	}
}

// genFunction generates everything one remote function contributes: the
// path constant, the args type with its conversion, the client method, and
// for queries the subscription companion.
func genFunction(b *typeBuilder, fn *load.Function) error {
	base := pascal(fn.File) + pascal(fn.Name)
	pathConst := base + "Path"

	b.f.Commentf("%s is the invocation path of the %s %s.", pathConst, fn.Path(), fn.Kind)
	b.f.Const().Id(pathConst).Op("=").Lit(fn.Path())

	argsName, err := genArgs(b, base, fn)
	if err != nil {
		return err
	}

	retType, retUntyped, err := returnType(b, base, fn)
	if err != nil {
		return err
	}

	genMethod(b, fn, base, pathConst, argsName, retType, retUntyped)
	if fn.Kind.IsQuery() {
		genSubscribe(b, fn, base, pathConst, argsName, retType, retUntyped)
	}
	return nil
}

// genArgs emits the args struct and its conversion to the wire map. The
// empty string is returned when the function takes no declared arguments,
// and "any" when the declaration could not be typed at all.
func genArgs(b *typeBuilder, base string, fn *load.Function) (string, error) {
	if fn.Args.Kind == descriptor.KindAny {
		return "any", nil
	}
	if len(fn.Args.Props) == 0 {
		return "", nil
	}
	name := b.declare(base + "Args")
	fields := make([]jen.Code, 0, len(fn.Args.Props))
	for _, p := range fn.Args.Props {
		field, err := b.structField(p, base)
		if err != nil {
			return "", NewGenerationError(fn.Path(), "cannot generate args", err)
		}
		fields = append(fields, field)
	}
	b.f.Commentf("%s holds the arguments of %s.", name, fn.Path())
	b.f.Type().Id(name).Struct(fields...)

	recv := receiver(name)
	b.f.Func().Params(jen.Id(recv).Id(name)).Id("args").Params().Params(jen.Map(jen.String()).Qual(runtimePkg, "Value"), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("m").Op(":=").Make(jen.Map(jen.String()).Qual(runtimePkg, "Value"), jen.Lit(len(fn.Args.Props)))
		for _, p := range fn.Args.Props {
			genArgConversion(g, recv, p)
		}
		g.Return(jen.Id("m"), jen.Nil())
	})
	return name, nil
}

// genArgConversion appends the statements turning one args field into its
// wire value. Absent optional arguments are omitted from the map entirely,
// they are not sent as explicit nulls.
func genArgConversion(g *jen.Group, recv string, p descriptor.Prop) {
	field := jen.Id(recv).Dot(pascal(p.Name))
	key := jen.Lit(p.Name)
	d := p.Type
	if d.Kind == descriptor.KindOptional {
		inner := d.Inner
		g.If(field.Clone().Op("!=").Nil()).BlockFunc(func(opt *jen.Group) {
			if ctor, deref := scalarCtor(inner); ctor != "" {
				arg := field.Clone()
				if deref {
					arg = jen.Op("*").Add(field.Clone())
				}
				opt.Id("m").Index(key).Op("=").Qual(runtimePkg, ctor).Call(arg)
				return
			}
			convertComplex(opt, key, field.Clone())
		})
		return
	}
	if ctor, _ := scalarCtor(d); ctor != "" {
		g.Id("m").Index(key).Op("=").Qual(runtimePkg, ctor).Call(field)
		return
	}
	if d.Kind == descriptor.KindAny {
		g.Id("m").Index(key).Op("=").Add(field)
		return
	}
	convertComplex(g, key, field)
}

// scalarCtor maps a scalar descriptor to its runtime constructor. deref
// reports whether an optional field needs dereferencing before the call.
func scalarCtor(d *descriptor.Descriptor) (ctor string, deref bool) {
	switch d.Kind {
	case descriptor.KindString, descriptor.KindID:
		return "NewString", true
	case descriptor.KindInt64:
		return "NewInt64", true
	case descriptor.KindFloat64:
		return "NewFloat64", true
	case descriptor.KindBoolean:
		return "NewBool", true
	case descriptor.KindBytes:
		return "NewBytes", true
	case descriptor.KindLiteral:
		switch d.Literal.(type) {
		case string:
			return "NewString", true
		case float64:
			return "NewFloat64", true
		case bool:
			return "NewBool", true
		}
	}
	return "", false
}

func convertComplex(g *jen.Group, key, expr jen.Code) {
	g.Block(
		jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual(runtimePkg, "ToValue").Call(expr),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("m").Index(key).Op("=").Id("v"),
	)
}

// returnType resolves the Go result type of a function. Functions without
// a returns validator, and those whose validator degraded to any, keep the
// raw value surface.
func returnType(b *typeBuilder, base string, fn *load.Function) (jen.Code, bool, error) {
	if fn.Returns == nil || fn.Returns.Kind == descriptor.KindAny {
		return jen.Qual(runtimePkg, "Value"), true, nil
	}
	code, err := b.goType(fn.Returns, base+"Result")
	if err != nil {
		return nil, false, NewGenerationError(fn.Path(), "cannot generate return type", err)
	}
	return code, false, nil
}

// methodParams renders the parameter list shared by the call method and
// the subscription companion.
func methodParams(argsName string) []jen.Code {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	switch argsName {
	case "":
	case "any":
		params = append(params, jen.Id("args").Map(jen.String()).Qual(runtimePkg, "Value"))
	default:
		params = append(params, jen.Id("args").Id(argsName))
	}
	return params
}

// argsStatements renders the statements producing the wire map into "m".
// onErr supplies the zero result returned on a conversion failure.
func argsStatements(g *jen.Group, argsName string, onErr func() jen.Code) {
	switch argsName {
	case "":
		g.Id("m").Op(":=").Map(jen.String()).Qual(runtimePkg, "Value").Values()
	case "any":
		g.Id("m").Op(":=").Id("args")
	default:
		g.List(jen.Id("m"), jen.Err()).Op(":=").Id("args").Dot("args").Call()
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(onErr(), jen.Err()))
	}
}

func genMethod(b *typeBuilder, fn *load.Function, base, pathConst, argsName string, retType jen.Code, retUntyped bool) {
	f := b.f
	route := callRoute(fn.Kind)
	f.Commentf("%s calls the %s %s.", base, fn.Path(), fn.Kind)
	f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id(base).Params(methodParams(argsName)...).Params(retType, jen.Error()).BlockFunc(func(g *jen.Group) {
		zero := func() jen.Code { return jen.Qual(runtimePkg, "Value").Values() }
		if !retUntyped {
			g.Var().Id("out").Add(retType)
			zero = func() jen.Code { return jen.Id("out") }
		}
		argsStatements(g, argsName, zero)
		g.List(jen.Id("raw"), jen.Err()).Op(":=").Id("c").Dot("caller").Dot(route).Call(jen.Id("ctx"), jen.Id(pathConst), jen.Id("m"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero(), jen.Err()))
		if retUntyped {
			g.Return(jen.Id("raw"), jen.Nil())
			return
		}
		g.If(
			jen.Err().Op(":=").Qual(runtimePkg, "DecodeValue").Call(jen.Id("raw"), jen.Op("&").Id("out")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Id("out"), jen.Err()))
		g.Return(jen.Id("out"), jen.Nil())
	})
}

func genSubscribe(b *typeBuilder, fn *load.Function, base, pathConst, argsName string, retType jen.Code, retUntyped bool) {
	f := b.f
	name := base + "Subscribe"
	var result jen.Code
	if retUntyped {
		result = jen.Op("*").Qual(runtimePkg, "QuerySubscription")
	} else {
		b.needs.subscription = true
		result = jen.Op("*").Id("TypedSubscription").Index(retType)
	}
	f.Commentf("%s subscribes to the %s query.", name, fn.Path())
	f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id(name).Params(methodParams(argsName)...).Params(result, jen.Error()).BlockFunc(func(g *jen.Group) {
		argsStatements(g, argsName, func() jen.Code { return jen.Nil() })
		g.List(jen.Id("sub"), jen.Err()).Op(":=").Id("c").Dot("caller").Dot("Subscribe").Call(jen.Id("ctx"), jen.Id(pathConst), jen.Id("m"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		if retUntyped {
			g.Return(jen.Id("sub"), jen.Nil())
			return
		}
		g.Return(jen.Id("newTypedSubscription").Index(retType).Call(jen.Id("sub")), jen.Nil())
	})
}
