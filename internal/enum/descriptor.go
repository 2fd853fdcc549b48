// Package enum resolves between wire names (or raw integers) and the
// members of Go integer enum types.
//
// Go has no enum declarations to introspect, so each type is described once
// by a Descriptor listing its members, their values and any explicit wire
// name. From a Descriptor and an optional naming transform the package builds
// an immutable alias Table, cached per (type, transform) for the life of the
// process.
package enum

import (
	"fmt"
	"math"
	"reflect"
)

// Integer is the set of types an enum may be declared over.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Member is one declared enum constant. Value holds the constant's bit
// pattern; unsigned values above math.MaxInt64 wrap.
type Member struct {
	Name     string
	Value    int64
	WireName string
}

// Of declares a member named name with value v.
func Of[T Integer](v T, name string) Member {
	return Member{Name: name, Value: int64(v)}
}

// Wire returns m with an explicit wire name override.
func (m Member) Wire(name string) Member {
	m.WireName = name
	return m
}

// Descriptor describes an enum type: its members in declaration order and
// the width of its underlying integer.
type Descriptor struct {
	Type     reflect.Type
	Members  []Member
	Bits     int
	Unsigned bool
	// Flags marks a bit set: values are read from and written as
	// comma-separated member lists such as "Read, Write".
	Flags bool
}

// Describe builds the Descriptor for T.
func Describe[T Integer](members ...Member) Descriptor {
	typ := reflect.TypeFor[T]()
	return Descriptor{
		Type:     typ,
		Members:  members,
		Bits:     typ.Bits(),
		Unsigned: isUnsigned(typ.Kind()),
	}
}

// AsFlags returns d marked as a bit set.
func (d Descriptor) AsFlags() Descriptor {
	d.Flags = true
	return d
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// TypeName is used in messages.
func (d Descriptor) TypeName() string {
	if d.Type == nil {
		return "enum"
	}
	return d.Type.String()
}

// FitsInt reports whether i is representable in the underlying type.
func (d Descriptor) FitsInt(i int64) bool {
	if d.Unsigned {
		return i >= 0 && d.FitsUint(uint64(i))
	}
	if d.Bits >= 64 || d.Bits == 0 {
		return true
	}
	limit := int64(1) << (d.Bits - 1)
	return i >= -limit && i < limit
}

// FitsUint reports whether u is representable in the underlying type.
func (d Descriptor) FitsUint(u uint64) bool {
	if !d.Unsigned {
		return u <= math.MaxInt64 && d.FitsInt(int64(u))
	}
	if d.Bits >= 64 || d.Bits == 0 {
		return true
	}
	return u < uint64(1)<<d.Bits
}

// Format renders a member value the way the underlying type prints it.
func (d Descriptor) Format(v int64) string {
	if d.Unsigned {
		return fmt.Sprintf("%d", uint64(v))
	}
	return fmt.Sprintf("%d", v)
}
