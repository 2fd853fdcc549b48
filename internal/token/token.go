// Package token defines the pull-style JSON token cursor consumed by the
// dynamic value decoder and the enum resolver, the push-style writer they
// encode into, and concrete implementations of both.
package token

import (
	"time"

	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/shopspring/decimal"
)

// Kind classifies the token a Reader is positioned on.
type Kind uint8

const (
	None Kind = iota
	Null
	True
	False
	Number
	String
	BeginArray
	EndArray
	BeginObject
	EndObject
	PropertyName
	Comment
)

var kindNames = [...]string{
	None:         "none",
	Null:         "null",
	True:         "true",
	False:        "false",
	Number:       "number",
	String:       "string",
	BeginArray:   "start of array",
	EndArray:     "end of array",
	BeginObject:  "start of object",
	EndObject:    "end of object",
	PropertyName: "property name",
	Comment:      "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Reader is a cursor over a JSON token stream. It starts before the first
// token (Kind reports None); Next advances it.
type Reader interface {
	// Next advances to the next token and reports whether one was found.
	// At the end of input, or after a syntax error, it returns false and
	// Err tells the two apart.
	Next() bool
	Err() error
	Kind() Kind
	// Pos is the byte offset of the current token.
	Pos() int

	// Text returns the decoded text of a string, property name or comment
	// token, and the raw literal of a number token.
	Text() string
	Int64() (int64, bool)
	Uint64() (uint64, bool)
	Decimal() (decimal.Decimal, error)
	Float64() (float64, error)
	// DateTime parses a string token as a date-time without carrying its
	// offset.
	DateTime() (time.Time, models.TimeKind, bool)
	// DateTimeOffset parses a string token as a date-time that keeps its
	// UTC offset.
	DateTimeOffset() (time.Time, bool)
}

// Writer receives JSON tokens in document order.
type Writer interface {
	WriteNull() error
	WriteBool(b bool) error
	WriteInt(i int64) error
	WriteUint(u uint64) error
	WriteDecimal(d decimal.Decimal) error
	WriteFloat(f float64) error
	WriteString(s string) error
	WriteName(name string) error
	BeginArray() error
	EndArray() error
	BeginObject() error
	EndObject() error
}
