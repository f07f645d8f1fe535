// Package load extracts the schema and function declarations out of parsed
// source documents and lowers their validator expressions into type
// descriptors. It sits between the syntax layer and the generator: syntax
// gives it raw expression trees, it hands gen a fully resolved model.
package load

import (
	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/syntax"
)

// Schema is the loaded form of one schema document.
type Schema struct {
	// Path is the source file the schema was read from.
	Path string `json:"path,omitempty"`
	// Tables in declaration order.
	Tables []*Table `json:"tables,omitempty"`
}

// Table is one defineTable entry of the schema.
type Table struct {
	Name    string    `json:"name,omitempty"`
	Columns []*Column `json:"columns,omitempty"`
	Indexes []*Index  `json:"indexes,omitempty"`
}

// Column is one field of a table, with its lowered type.
type Column struct {
	Name string                 `json:"name,omitempty"`
	Type *descriptor.Descriptor `json:"type,omitempty"`
}

// Index is one .index() declaration on a table. Indexes do not affect the
// generated types; they are retained for tooling and diagnostics.
type Index struct {
	Name   string   `json:"name,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// Table returns the table with the given name, if present.
func (s *Schema) Table(name string) (*Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// ExtractSchema locates the single defineSchema call of the file and lowers
// every table into a Schema. The call may be the default export, the
// initializer of a named export, or a bare expression statement; exactly
// one must exist.
func ExtractSchema(file *syntax.File, bindings Bindings) (*Schema, error) {
	call, err := findSchemaCall(file)
	if err != nil {
		return nil, err
	}
	if len(call.Args) == 0 || call.Args[0] == nil || call.Args[0].Kind != syntax.KindObject {
		return nil, &SchemaError{Path: file.Path, Message: "defineSchema requires a table map"}
	}
	s := &Schema{Path: file.Path}
	for _, prop := range call.Args[0].Props {
		name, ok := prop.KeyName()
		if !ok {
			return nil, &SchemaError{Path: file.Path, Message: "invalid table name"}
		}
		table, err := extractTable(file, name, prop.Value, bindings)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, table)
	}
	return s, nil
}

func findSchemaCall(file *syntax.File) (*syntax.Node, error) {
	var found *syntax.Node
	for _, d := range file.Decls {
		node := d.Init
		if node == nil || node.Kind != syntax.KindCall {
			continue
		}
		if name, ok := node.CalleeName(); !ok || name != "defineSchema" {
			continue
		}
		if found != nil {
			return nil, &SchemaError{Path: file.Path, Message: "multiple defineSchema calls"}
		}
		found = node
	}
	if found == nil {
		return nil, &SchemaError{Path: file.Path, Message: "no defineSchema call found"}
	}
	return found, nil
}

// extractTable walks the call spine of a table expression. Chained calls
// like defineTable({...}).index("by_user", ["userId"]) are unwound from the
// outside in until the defineTable base is reached.
func extractTable(file *syntax.File, name string, node *syntax.Node, bindings Bindings) (*Table, error) {
	t := &Table{Name: name}
	for node != nil {
		if node.Kind != syntax.KindCall {
			return nil, &SchemaError{Path: file.Path, Context: name, Message: "table must be a defineTable call"}
		}
		callee, ok := node.CalleeName()
		if !ok {
			return nil, &SchemaError{Path: file.Path, Context: name, Message: "table must be a defineTable call"}
		}
		if callee == "defineTable" {
			cols, err := extractColumns(file, name, node, bindings)
			if err != nil {
				return nil, err
			}
			t.Columns = cols
			return t, nil
		}
		if callee == "index" {
			if idx := extractIndex(node); idx != nil {
				t.Indexes = append([]*Index{idx}, t.Indexes...)
			}
		}
		// Chained builder call. Keep walking toward the base.
		node = node.Callee.Object
	}
	return nil, &SchemaError{Path: file.Path, Context: name, Message: "table must be a defineTable call"}
}

func extractColumns(file *syntax.File, table string, call *syntax.Node, bindings Bindings) ([]*Column, error) {
	if len(call.Args) == 0 || call.Args[0] == nil || call.Args[0].Kind != syntax.KindObject {
		return nil, &SchemaError{Path: file.Path, Context: table, Message: "defineTable requires a column map"}
	}
	var cols []*Column
	for _, prop := range call.Args[0].Props {
		name, ok := prop.KeyName()
		if !ok {
			return nil, &SchemaError{Path: file.Path, Context: table, Message: "invalid column name"}
		}
		resolved, err := bindings.Resolve(prop.Value)
		if err != nil {
			return nil, err
		}
		typ, err := descriptor.Build(resolved, descriptor.NewContext(table+"."+name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, &Column{Name: name, Type: typ})
	}
	return cols, nil
}

func extractIndex(call *syntax.Node) *Index {
	if len(call.Args) == 0 || call.Args[0] == nil || call.Args[0].Kind != syntax.KindString {
		return nil
	}
	idx := &Index{Name: call.Args[0].Str}
	if len(call.Args) > 1 && call.Args[1] != nil && call.Args[1].Kind == syntax.KindArray {
		for _, e := range call.Args[1].Elems {
			if e != nil && e.Kind == syntax.KindString {
				idx.Fields = append(idx.Fields, e.Str)
			}
		}
	}
	return idx
}
