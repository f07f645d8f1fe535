package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/load"
)

// genEntity generates the document struct for one table, with the system
// fields every stored document carries, plus the table and index name
// constants.
func genEntity(b *typeBuilder, t *load.Table) error {
	ctx := pascal(t.Name)
	docName := b.declare(ctx + "Doc")

	b.f.Const().Id(ctx + "Table").Op("=").Lit(t.Name)
	if len(t.Indexes) > 0 {
		b.f.Const().DefsFunc(func(g *jen.Group) {
			for _, idx := range t.Indexes {
				g.Id(ctx + pascal(idx.Name) + "Index").Op("=").Lit(idx.Name)
			}
		})
	}

	fields := make([]jen.Code, 0, len(t.Columns)+2)
	fields = append(fields,
		jen.Id("ID").String().Tag(map[string]string{"json": "_id"}),
		jen.Id("CreationTime").Float64().Tag(map[string]string{"json": "_creationTime"}),
	)
	for _, col := range t.Columns {
		if n := pascal(col.Name); n == "ID" || n == "CreationTime" {
			return NewGenerationError(t.Name+"."+col.Name, "column collides with a system field", nil)
		}
		field, err := b.structField(descriptor.Prop{Name: col.Name, Type: col.Type}, ctx)
		if err != nil {
			return NewGenerationError(t.Name+"."+col.Name, "cannot generate document field", err)
		}
		fields = append(fields, field)
	}

	b.f.Commentf("%s is a document of the %q table.", docName, t.Name)
	b.f.Type().Id(docName).Struct(fields...)
	return nil
}
