// Package models holds the runtime-typed representation of a decoded JSON
// document.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant of a Value is active.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Integer
	Decimal
	Double
	String
	Instant
	InstantWithOffset
	Array
	Object
)

var kindNames = [...]string{
	Null:              "Null",
	Bool:              "Bool",
	Integer:           "Integer",
	Decimal:           "Decimal",
	Double:            "Double",
	String:            "String",
	Instant:           "Instant",
	InstantWithOffset: "InstantWithOffset",
	Array:             "Array",
	Object:            "Object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is any JSON value decoded without a known target shape. Exactly one
// variant is active; the zero Value is Null. Arrays and objects own their
// children.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	d    decimal.Decimal
	s    string
	t    time.Time
	tk   TimeKind
	arr  []Value
	obj  *Map
}

// NullValue returns the Null variant.
func NullValue() Value { return Value{} }

// BoolValue returns a Bool variant.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// IntegerValue returns an Integer variant.
func IntegerValue(i int64) Value { return Value{kind: Integer, i: i} }

// DecimalValue returns a Decimal variant.
func DecimalValue(d decimal.Decimal) Value { return Value{kind: Decimal, d: d} }

// DoubleValue returns a Double variant.
func DoubleValue(f float64) Value { return Value{kind: Double, f: f} }

// StringValue returns a String variant.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// InstantValue returns an Instant variant. The kind records whether the
// time is unspecified, UTC, or was converted to the local zone.
func InstantValue(t time.Time, kind TimeKind) Value {
	return Value{kind: Instant, t: t, tk: kind}
}

// OffsetValue returns an InstantWithOffset variant. The offset carried by
// t's location is kept as is.
func OffsetValue(t time.Time) Value { return Value{kind: InstantWithOffset, t: t} }

// ArrayValue returns an Array variant holding elems.
func ArrayValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: Array, arr: elems}
}

// ObjectValue returns an Object variant backed by m. A nil map yields an
// empty object.
func ObjectValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: Object, obj: m}
}

// Kind reports the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == Null }

// The accessors below return the zero value when v holds another variant.

func (v Value) Bool() bool               { return v.b }
func (v Value) Int() int64               { return v.i }
func (v Value) Float() float64           { return v.f }
func (v Value) Decimal() decimal.Decimal { return v.d }
func (v Value) Str() string              { return v.s }
func (v Value) Time() time.Time          { return v.t }
func (v Value) TimeKind() TimeKind       { return v.tk }
func (v Value) Elems() []Value           { return v.arr }
func (v Value) Map() *Map                { return v.obj }

func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return v.obj.Len()
	case String:
		return len(v.s)
	}
	return 0
}

// Equal reports structural equality. Objects compare member by member in
// order; decimals compare numerically; instants compare the moment, the
// time kind and, for InstantWithOffset, the offset.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Integer:
		return v.i == o.i
	case Decimal:
		return v.d.Equal(o.d)
	case Double:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case String:
		return v.s == o.s
	case Instant:
		return v.tk == o.tk && v.t.Equal(o.t)
	case InstantWithOffset:
		_, a := v.t.Zone()
		_, b := o.t.Zone()
		return a == b && v.t.Equal(o.t)
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Interface converts v to plain Go values: nil, bool, int64,
// decimal.Decimal, float64, string, time.Time, []any and map[string]any.
// Object member order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Integer:
		return v.i
	case Decimal:
		return v.d
	case Double:
		return v.f
	case String:
		return v.s
	case Instant, InstantWithOffset:
		return v.t
	case Array:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, v.obj.Len())
		for _, m := range v.obj.Members() {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// String renders v as a typed tree, e.g. Object{a: Integer(1)}.
func (v Value) String() string {
	var sb strings.Builder
	v.writeTo(&sb)
	return sb.String()
}

func (v Value) writeTo(sb *strings.Builder) {
	switch v.kind {
	case Null:
		sb.WriteString("Null")
	case Bool:
		fmt.Fprintf(sb, "Bool(%t)", v.b)
	case Integer:
		fmt.Fprintf(sb, "Integer(%d)", v.i)
	case Decimal:
		fmt.Fprintf(sb, "Decimal(%s)", v.d.String())
	case Double:
		fmt.Fprintf(sb, "Double(%s)", strconv.FormatFloat(v.f, 'g', -1, 64))
	case String:
		fmt.Fprintf(sb, "String(%q)", v.s)
	case Instant:
		fmt.Fprintf(sb, "Instant(%s, %s)", v.t.Format(time.RFC3339Nano), v.tk)
	case InstantWithOffset:
		fmt.Fprintf(sb, "InstantWithOffset(%s)", v.t.Format(time.RFC3339Nano))
	case Array:
		sb.WriteString("Array[")
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeTo(sb)
		}
		sb.WriteString("]")
	case Object:
		sb.WriteString("Object{")
		for i, m := range v.obj.Members() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.Key)
			sb.WriteString(": ")
			m.Value.writeTo(sb)
		}
		sb.WriteString("}")
	}
}
