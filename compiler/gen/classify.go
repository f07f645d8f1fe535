package gen

import (
	"github.com/syssam/convexgen/compiler/descriptor"
)

// unionShape is the classification of a union descriptor. Shapes are tried
// in a fixed order; the first match decides the generated representation.
type unionShape int8

const (
	// shapeNullable is a two-variant union where one side is null. The
	// generated type is a pointer to the other side.
	shapeNullable unionShape = iota
	// shapeLiteralEnum is a union of string literals, generated as a
	// string type with one constant per value.
	shapeLiteralEnum
	// shapeResult is the {Ok: T} | {Err: E} pair, generated on the shared
	// Result type.
	shapeResult
	// shapeTagged is a union of objects discriminated by a "type" string
	// literal property.
	shapeTagged
	// shapeUntagged is everything else: a wrapper with one pointer field
	// per variant.
	shapeUntagged
)

func (s unionShape) String() string {
	switch s {
	case shapeNullable:
		return "nullable"
	case shapeLiteralEnum:
		return "literal enum"
	case shapeResult:
		return "result"
	case shapeTagged:
		return "tagged enum"
	default:
		return "untagged enum"
	}
}

// taggedVariant is one arm of a tagged union.
type taggedVariant struct {
	Tag string
	// Props are the variant's properties with the discriminant removed.
	Props []descriptor.Prop
}

// unionInfo is the outcome of classifying one union descriptor. Only the
// fields belonging to Shape are set.
type unionInfo struct {
	Shape unionShape

	// Inner is the non-null side of a nullable union.
	Inner *descriptor.Descriptor
	// Literals are the values of a literal enum, in declaration order.
	Literals []string
	// Ok and Err are the payload types of a result union.
	Ok, Err *descriptor.Descriptor
	// Tagged are the arms of a tagged union.
	Tagged []taggedVariant
	// Variants are the members of an untagged union.
	Variants []*descriptor.Descriptor
}

// classifyUnion decides how a union is represented in Go. The rules are
// ordered: nullable wins over everything, then literal enums, the result
// pair, tagged objects, and finally the untagged fallback. A three-variant
// union containing null is untagged, not nullable.
func classifyUnion(d *descriptor.Descriptor) unionInfo {
	if inner, ok := nullableInner(d); ok {
		return unionInfo{Shape: shapeNullable, Inner: inner}
	}
	if lits, ok := literalValues(d); ok {
		return unionInfo{Shape: shapeLiteralEnum, Literals: lits}
	}
	if okT, errT, ok := resultPair(d); ok {
		return unionInfo{Shape: shapeResult, Ok: okT, Err: errT}
	}
	if tagged, ok := taggedVariants(d); ok {
		return unionInfo{Shape: shapeTagged, Tagged: tagged}
	}
	return unionInfo{Shape: shapeUntagged, Variants: d.Variants}
}

func nullableInner(d *descriptor.Descriptor) (*descriptor.Descriptor, bool) {
	if len(d.Variants) != 2 {
		return nil, false
	}
	switch {
	case d.Variants[0].IsNull() && !d.Variants[1].IsNull():
		return d.Variants[1], true
	case d.Variants[1].IsNull() && !d.Variants[0].IsNull():
		return d.Variants[0], true
	}
	return nil, false
}

func literalValues(d *descriptor.Descriptor) ([]string, bool) {
	values := make([]string, 0, len(d.Variants))
	for _, v := range d.Variants {
		s, ok := v.StringLiteral()
		if !ok {
			return nil, false
		}
		values = append(values, s)
	}
	return values, len(values) > 0
}

func resultPair(d *descriptor.Descriptor) (okT, errT *descriptor.Descriptor, ok bool) {
	if len(d.Variants) != 2 {
		return nil, nil, false
	}
	for i, v := range d.Variants {
		other := d.Variants[1-i]
		if p, found := singleProp(v, "Ok"); found {
			if e, found := singleProp(other, "Err"); found {
				return p, e, true
			}
		}
	}
	return nil, nil, false
}

func singleProp(d *descriptor.Descriptor, name string) (*descriptor.Descriptor, bool) {
	if d.Kind != descriptor.KindObject || len(d.Props) != 1 || d.Props[0].Name != name {
		return nil, false
	}
	return d.Props[0].Type, true
}

func taggedVariants(d *descriptor.Descriptor) ([]taggedVariant, bool) {
	arms := make([]taggedVariant, 0, len(d.Variants))
	seen := make(map[string]bool)
	for _, v := range d.Variants {
		if v.Kind != descriptor.KindObject {
			return nil, false
		}
		disc, ok := v.Prop("type")
		if !ok {
			return nil, false
		}
		tag, ok := disc.Type.StringLiteral()
		if !ok || seen[tag] {
			return nil, false
		}
		seen[tag] = true
		props := make([]descriptor.Prop, 0, len(v.Props)-1)
		for _, p := range v.Props {
			if p.Name != "type" {
				props = append(props, p)
			}
		}
		arms = append(arms, taggedVariant{Tag: tag, Props: props})
	}
	return arms, len(arms) > 0
}
