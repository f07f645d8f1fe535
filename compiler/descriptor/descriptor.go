// Package descriptor defines the canonical structural representation of one
// validator expression, and builds it from resolved syntax trees. The
// Descriptor set is closed: every validator constructor the generator
// understands maps onto exactly one Kind, and anything else is rejected.
package descriptor

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Descriptor.
type Kind uint8

// The closed descriptor variant set.
const (
	KindNull Kind = iota
	KindBoolean
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindID
	KindLiteral
	KindOptional
	KindArray
	KindObject
	KindRecord
	KindUnion
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindID:
		return "id"
	case KindLiteral:
		return "literal"
	case KindOptional:
		return "optional"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindAny:
		return "any"
	default:
		return "invalid"
	}
}

type (
	// Descriptor is one node of the canonical type tree. It is a tagged
	// variant: which fields are meaningful depends on Kind. Descriptors are
	// finite by construction (the builder enforces cycle detection) and
	// carry no source positions, so two descriptors with identical semantic
	// content compare equal regardless of where they came from.
	Descriptor struct {
		Kind Kind

		// Table is the referenced table name (KindID).
		Table string

		// Literal is the literal payload (KindLiteral): a string, float64
		// or bool.
		Literal any

		// Inner is the wrapped type (KindOptional).
		Inner *Descriptor

		// Elem is the element type (KindArray).
		Elem *Descriptor

		// Props are the object properties in declaration order
		// (KindObject). Order affects naming only, never semantics.
		Props []Prop

		// Key and Value are the record key and value types (KindRecord).
		Key   *Descriptor
		Value *Descriptor

		// Variants are the union members in declaration order (KindUnion).
		// A union always has at least one variant.
		Variants []*Descriptor
	}

	// Prop is one named object property.
	Prop struct {
		Name string
		Type *Descriptor
	}
)

// Constructors. Kept total and allocation-light; composite constructors
// take ownership of their arguments.

func Null() *Descriptor                   { return &Descriptor{Kind: KindNull} }
func Boolean() *Descriptor                { return &Descriptor{Kind: KindBoolean} }
func Int64() *Descriptor                  { return &Descriptor{Kind: KindInt64} }
func Float64() *Descriptor                { return &Descriptor{Kind: KindFloat64} }
func String() *Descriptor                 { return &Descriptor{Kind: KindString} }
func Bytes() *Descriptor                  { return &Descriptor{Kind: KindBytes} }
func Any() *Descriptor                    { return &Descriptor{Kind: KindAny} }
func ID(table string) *Descriptor         { return &Descriptor{Kind: KindID, Table: table} }
func Literal(value any) *Descriptor       { return &Descriptor{Kind: KindLiteral, Literal: value} }
func Optional(inner *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindOptional, Inner: inner}
}
func Array(elem *Descriptor) *Descriptor { return &Descriptor{Kind: KindArray, Elem: elem} }
func Object(props ...Prop) *Descriptor   { return &Descriptor{Kind: KindObject, Props: props} }
func Record(key, value *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindRecord, Key: key, Value: value}
}
func Union(variants ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindUnion, Variants: variants}
}

// IsNull reports whether the descriptor is the null type.
func (d *Descriptor) IsNull() bool { return d != nil && d.Kind == KindNull }

// StringLiteral returns the literal string payload, if this is a string
// literal descriptor.
func (d *Descriptor) StringLiteral() (string, bool) {
	if d == nil || d.Kind != KindLiteral {
		return "", false
	}
	s, ok := d.Literal.(string)
	return s, ok
}

// Prop returns the property with the given name, if present.
func (d *Descriptor) Prop(name string) (Prop, bool) {
	if d == nil || d.Kind != KindObject {
		return Prop{}, false
	}
	for _, p := range d.Props {
		if p.Name == name {
			return p, true
		}
	}
	return Prop{}, false
}

// Equal reports structural equality. Object property order is significant,
// matching declaration-order semantics everywhere else in the pipeline.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Kind != other.Kind {
		return false
	}
	switch d.Kind {
	case KindID:
		return d.Table == other.Table
	case KindLiteral:
		return d.Literal == other.Literal
	case KindOptional:
		return d.Inner.Equal(other.Inner)
	case KindArray:
		return d.Elem.Equal(other.Elem)
	case KindObject:
		if len(d.Props) != len(other.Props) {
			return false
		}
		for i := range d.Props {
			if d.Props[i].Name != other.Props[i].Name || !d.Props[i].Type.Equal(other.Props[i].Type) {
				return false
			}
		}
		return true
	case KindRecord:
		return d.Key.Equal(other.Key) && d.Value.Equal(other.Value)
	case KindUnion:
		if len(d.Variants) != len(other.Variants) {
			return false
		}
		for i := range d.Variants {
			if !d.Variants[i].Equal(other.Variants[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders a compact, stable form of the descriptor, used in error
// messages and tests.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case KindID:
		return fmt.Sprintf("id(%s)", d.Table)
	case KindLiteral:
		return fmt.Sprintf("literal(%v)", d.Literal)
	case KindOptional:
		return fmt.Sprintf("optional(%s)", d.Inner)
	case KindArray:
		return fmt.Sprintf("array(%s)", d.Elem)
	case KindObject:
		parts := make([]string, len(d.Props))
		for i, p := range d.Props {
			parts[i] = p.Name + ": " + p.Type.String()
		}
		return "object{" + strings.Join(parts, ", ") + "}"
	case KindRecord:
		return fmt.Sprintf("record(%s, %s)", d.Key, d.Value)
	case KindUnion:
		parts := make([]string, len(d.Variants))
		for i, v := range d.Variants {
			parts[i] = v.String()
		}
		return "union(" + strings.Join(parts, ", ") + ")"
	default:
		return d.Kind.String()
	}
}
