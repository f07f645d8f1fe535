package gen

import (
	"github.com/dave/jennifer/jen"
)

// emitHelpers appends the shared support types the emitted bindings rely
// on. Each helper is emitted at most once per file, and only when some
// generated type or method actually uses it.
func (b *typeBuilder) emitHelpers() {
	if b.needs.unit {
		b.emitUnit()
	}
	if b.needs.result {
		b.emitResult()
	}
	if b.needs.tagged {
		b.emitMarshalTagged()
	}
	if b.needs.subscription {
		b.emitTypedSubscription()
	}
}

func (b *typeBuilder) emitUnit() {
	b.f.Comment("Unit is the payload of a null-typed value.")
	b.f.Type().Id("Unit").Struct()
}

func (b *typeBuilder) emitResult() {
	f := b.f
	f.Comment("Result holds either a success or an error payload.")
	f.Type().Id("Result").Types(jen.Id("T").Any(), jen.Id("E").Any()).Struct(
		jen.Id("ok").Bool(),
		jen.Id("okValue").Id("T"),
		jen.Id("errValue").Id("E"),
	)

	f.Comment("Ok creates a successful result.")
	f.Func().Id("Ok").Types(jen.Id("T").Any(), jen.Id("E").Any()).Params(jen.Id("value").Id("T")).Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E"))).Block(
		jen.Return(jen.Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E"))).Values(jen.Dict{
			jen.Id("ok"):      jen.True(),
			jen.Id("okValue"): jen.Id("value"),
		})),
	)

	f.Comment("Err creates a failed result.")
	f.Func().Id("Err").Types(jen.Id("T").Any(), jen.Id("E").Any()).Params(jen.Id("value").Id("E")).Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E"))).Block(
		jen.Return(jen.Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E"))).Values(jen.Dict{
			jen.Id("errValue"): jen.Id("value"),
		})),
	)

	recv := jen.Id("r").Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E")))
	f.Comment("Ok returns the success payload and whether the result succeeded.")
	f.Func().Params(recv.Clone()).Id("Ok").Params().Params(jen.Id("T"), jen.Bool()).Block(
		jen.Return(jen.Id("r").Dot("okValue"), jen.Id("r").Dot("ok")),
	)
	f.Comment("Err returns the error payload and whether the result failed.")
	f.Func().Params(recv.Clone()).Id("Err").Params().Params(jen.Id("E"), jen.Bool()).Block(
		jen.Return(jen.Id("r").Dot("errValue"), jen.Op("!").Id("r").Dot("ok")),
	)

	f.Func().Params(recv.Clone()).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.If(jen.Id("r").Dot("ok")).Block(
			jen.Return(jen.Qual(jsonPkg, "Marshal").Call(jen.Map(jen.String()).Any().Values(jen.Dict{
				jen.Lit("Ok"): jen.Id("r").Dot("okValue"),
			}))),
		),
		jen.Return(jen.Qual(jsonPkg, "Marshal").Call(jen.Map(jen.String()).Any().Values(jen.Dict{
			jen.Lit("Err"): jen.Id("r").Dot("errValue"),
		}))),
	)

	f.Func().Params(jen.Id("r").Op("*").Id("Result").Index(jen.List(jen.Id("T"), jen.Id("E")))).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Var().Id("probe").Struct(
			jen.Id("Ok").Qual(jsonPkg, "RawMessage").Tag(map[string]string{"json": "Ok"}),
			jen.Id("Err").Qual(jsonPkg, "RawMessage").Tag(map[string]string{"json": "Err"}),
		),
		jen.If(
			jen.Err().Op(":=").Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("probe")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())),
		jen.Switch().Block(
			jen.Case(jen.Id("probe").Dot("Ok").Op("!=").Nil()).Block(
				jen.Id("r").Dot("ok").Op("=").True(),
				jen.Return(jen.Qual(jsonPkg, "Unmarshal").Call(jen.Id("probe").Dot("Ok"), jen.Op("&").Id("r").Dot("okValue"))),
			),
			jen.Case(jen.Id("probe").Dot("Err").Op("!=").Nil()).Block(
				jen.Id("r").Dot("ok").Op("=").False(),
				jen.Return(jen.Qual(jsonPkg, "Unmarshal").Call(jen.Id("probe").Dot("Err"), jen.Op("&").Id("r").Dot("errValue"))),
			),
		),
		jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("result: neither Ok nor Err present"))),
	)
}

func (b *typeBuilder) emitMarshalTagged() {
	f := b.f
	f.Comment("marshalTagged serializes a variant payload with its discriminant injected.")
	f.Func().Id("marshalTagged").Params(jen.Id("tag").String(), jen.Id("v").Any()).Params(jen.Index().Byte(), jen.Error()).Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Qual(jsonPkg, "Marshal").Call(jen.Id("v")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("m").Op(":=").Map(jen.String()).Qual(jsonPkg, "RawMessage").Values(),
		jen.If(
			jen.Err().Op(":=").Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("m")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.List(jen.Id("tagData"), jen.Err()).Op(":=").Qual(jsonPkg, "Marshal").Call(jen.Id("tag")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("m").Index(jen.Lit("type")).Op("=").Id("tagData"),
		jen.Return(jen.Qual(jsonPkg, "Marshal").Call(jen.Id("m"))),
	)
}

func (b *typeBuilder) emitTypedSubscription() {
	f := b.f
	f.Comment("TypedSubscription decodes each update of a query subscription.")
	f.Type().Id("TypedSubscription").Types(jen.Id("T").Any()).Struct(
		jen.Id("sub").Op("*").Qual(runtimePkg, "QuerySubscription"),
		jen.Id("updates").Chan().Id("T"),
		jen.Id("errs").Chan().Error(),
	)

	f.Func().Id("newTypedSubscription").Types(jen.Id("T").Any()).Params(jen.Id("sub").Op("*").Qual(runtimePkg, "QuerySubscription")).Op("*").Id("TypedSubscription").Index(jen.Id("T")).Block(
		jen.Id("t").Op(":=").Op("&").Id("TypedSubscription").Index(jen.Id("T")).Values(jen.Dict{
			jen.Id("sub"):     jen.Id("sub"),
			jen.Id("updates"): jen.Make(jen.Chan().Id("T"), jen.Lit(1)),
			jen.Id("errs"):    jen.Make(jen.Chan().Error(), jen.Lit(1)),
		}),
		jen.Go().Id("t").Dot("pump").Call(),
		jen.Return(jen.Id("t")),
	)

	recv := jen.Id("s").Op("*").Id("TypedSubscription").Index(jen.Id("T"))
	f.Func().Params(recv.Clone()).Id("pump").Params().Block(
		jen.Defer().Close(jen.Id("s").Dot("updates")),
		jen.For().Block(
			jen.Select().Block(
				jen.Case(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Op("<-").Id("s").Dot("sub").Dot("Updates").Call()).Block(
					jen.If(jen.Op("!").Id("ok")).Block(jen.Return()),
					jen.Var().Id("out").Id("T"),
					jen.If(
						jen.Err().Op(":=").Qual(runtimePkg, "DecodeValue").Call(jen.Id("v"), jen.Op("&").Id("out")),
						jen.Err().Op("!=").Nil(),
					).Block(
						jen.Id("s").Dot("fail").Call(jen.Err()),
						jen.Return(),
					),
					jen.Id("s").Dot("updates").Op("<-").Id("out"),
				),
				jen.Case(jen.Err().Op(":=").Op("<-").Id("s").Dot("sub").Dot("Errs").Call()).Block(
					jen.Id("s").Dot("fail").Call(jen.Err()),
					jen.Return(),
				),
			),
		),
	)

	f.Func().Params(recv.Clone()).Id("fail").Params(jen.Err().Error()).Block(
		jen.Select().Block(
			jen.Case(jen.Id("s").Dot("errs").Op("<-").Err()).Block(),
			jen.Default().Block(),
		),
	)

	f.Comment("Updates returns the typed result channel.")
	f.Func().Params(recv.Clone()).Id("Updates").Params().Op("<-").Chan().Id("T").Block(
		jen.Return(jen.Id("s").Dot("updates")),
	)
	f.Comment("Errs returns the error channel.")
	f.Func().Params(recv.Clone()).Id("Errs").Params().Op("<-").Chan().Error().Block(
		jen.Return(jen.Id("s").Dot("errs")),
	)
	f.Comment("Close stops the underlying subscription.")
	f.Func().Params(recv.Clone()).Id("Close").Params().Block(
		jen.Id("s").Dot("sub").Dot("Close").Call(),
	)
}
