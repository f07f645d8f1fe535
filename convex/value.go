// Package convex is the small runtime the generated bindings build on. It
// models the document value space of a Convex deployment and the client
// surface used to invoke remote functions.
package convex

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// TypeID identifies the variant a Value holds.
type TypeID int8

const (
	TypeNull TypeID = iota
	TypeBool
	TypeInt64
	TypeFloat64
	TypeString
	TypeBytes
	TypeArray
	TypeObject
)

func (t TypeID) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is one document value. It is a flat tagged variant: TypeID decides
// which payload field is meaningful. Document IDs travel as strings.
type Value struct {
	TypeID TypeID

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Bytes  []byte
	Array  []Value
	Fields []Field
}

// Field is one entry of an object value. Objects keep their fields in
// insertion order so serialization is deterministic.
type Field struct {
	Name  string
	Value Value
}

func NewNull() Value                { return Value{TypeID: TypeNull} }
func NewBool(b bool) Value          { return Value{TypeID: TypeBool, Bool: b} }
func NewInt64(i int64) Value        { return Value{TypeID: TypeInt64, Int: i} }
func NewFloat64(f float64) Value    { return Value{TypeID: TypeFloat64, Float: f} }
func NewString(s string) Value      { return Value{TypeID: TypeString, Str: s} }
func NewBytes(b []byte) Value       { return Value{TypeID: TypeBytes, Bytes: b} }
func NewArray(elems []Value) Value  { return Value{TypeID: TypeArray, Array: elems} }
func NewObject(fields []Field) Value {
	return Value{TypeID: TypeObject, Fields: fields}
}

// NewObjectFromMap builds an object value with its fields in sorted key
// order, so two maps with equal contents serialize identically.
func NewObjectFromMap(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Name: k, Value: m[k]}
	}
	return NewObject(fields)
}

// Field returns the named object field, if present.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.TypeID != other.TypeID {
		return false
	}
	switch v.TypeID {
	case TypeNull:
		return true
	case TypeBool:
		return v.Bool == other.Bool
	case TypeInt64:
		return v.Int == other.Int
	case TypeFloat64:
		return v.Float == other.Float
	case TypeString:
		return v.Str == other.Str
	case TypeBytes:
		return string(v.Bytes) == string(other.Bytes)
	case TypeArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if len(v.Fields) != len(other.Fields) {
			return false
		}
		for i := range v.Fields {
			if v.Fields[i].Name != other.Fields[i].Name || !v.Fields[i].Value.Equal(other.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.TypeID {
	case TypeNull:
		return "null"
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeInt64:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat64:
		return fmt.Sprintf("%g", v.Float)
	case TypeString:
		return fmt.Sprintf("%q", v.Str)
	case TypeBytes:
		return fmt.Sprintf("bytes(%d)", len(v.Bytes))
	case TypeArray:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeObject:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Name + ": " + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}

// The wire format follows the Convex JSON encoding: int64 travels as
// {"$integer": <base64 little-endian>} and bytes as {"$bytes": <base64>},
// everything else as plain JSON.

// MarshalJSON implements json.Marshaler. Object fields are written in
// their stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.TypeID {
	case TypeNull:
		return []byte("null"), nil
	case TypeBool:
		return json.Marshal(v.Bool)
	case TypeInt64:
		return json.Marshal(map[string]string{"$integer": encodeInt64(v.Int)})
	case TypeFloat64:
		return json.Marshal(v.Float)
	case TypeString:
		return json.Marshal(v.Str)
	case TypeBytes:
		return json.Marshal(map[string]string{"$bytes": base64.StdEncoding.EncodeToString(v.Bytes)})
	case TypeArray:
		if v.Array == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Array)
	case TypeObject:
		var buf strings.Builder
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(f.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return []byte(buf.String()), nil
	default:
		return nil, fmt.Errorf("convexgen: cannot marshal invalid value")
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := fromDecoded(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func fromDecoded(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		// Plain JSON numbers are float64 on the wire; int64 always
		// travels via the $integer form.
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return NewFloat64(f), nil
	case string:
		return NewString(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			ev, err := fromDecoded(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return NewArray(elems), nil
	case map[string]any:
		if len(t) == 1 {
			if enc, ok := t["$integer"].(string); ok {
				i, err := decodeInt64(enc)
				if err != nil {
					return Value{}, err
				}
				return NewInt64(i), nil
			}
			if enc, ok := t["$bytes"].(string); ok {
				b, err := base64.StdEncoding.DecodeString(enc)
				if err != nil {
					return Value{}, err
				}
				return NewBytes(b), nil
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fv, err := fromDecoded(t[k])
			if err != nil {
				return Value{}, err
			}
			fields[i] = Field{Name: k, Value: fv}
		}
		return NewObject(fields), nil
	default:
		return Value{}, fmt.Errorf("convexgen: cannot decode %T into a value", raw)
	}
}

func encodeInt64(i int64) string {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(i))
	return base64.StdEncoding.EncodeToString(b[:])
}

func decodeInt64(s string) (int64, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("convexgen: invalid integer encoding")
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ToValue converts an arbitrary Go value into a Value over its JSON form.
// Generated code uses direct constructors for scalar fields and falls back
// to this bridge for nested structs and maps.
func ToValue(in any) (Value, error) {
	if v, ok := in.(Value); ok {
		return v, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return Value{}, err
	}
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}

// DecodeValue decodes a Value into target over its JSON form.
func DecodeValue(v Value, target any) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
