package token

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/shopspring/decimal"
)

// Encoder is a Writer backed by a jsontext.Encoder.
type Encoder struct {
	enc *jsontext.Encoder
}

// EncoderOption configures NewEncoder.
type EncoderOption func(*encoderConfig)

type encoderConfig struct {
	indent string
}

// WithIndent makes the output multi-line, indenting each level with indent.
// An empty indent keeps the output compact.
func WithIndent(indent string) EncoderOption {
	return func(c *encoderConfig) { c.indent = indent }
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	var cfg encoderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Encoder{enc: jsontext.NewEncoder(w, IndentOptions(cfg.indent)...)}
}

// IndentOptions returns the jsontext options for indent; none when indent
// is empty.
func IndentOptions(indent string) []jsontext.Options {
	if indent == "" {
		return nil
	}
	return []jsontext.Options{jsontext.Multiline(true), jsontext.WithIndent(indent), jsontext.SpaceAfterColon(true)}
}

// WrapEncoder adapts an existing jsontext.Encoder, e.g. one handed to a
// marshal hook.
func WrapEncoder(enc *jsontext.Encoder) *Encoder {
	return &Encoder{enc: enc}
}

func (e *Encoder) WriteNull() error           { return e.enc.WriteToken(jsontext.Null) }
func (e *Encoder) WriteBool(b bool) error     { return e.enc.WriteToken(jsontext.Bool(b)) }
func (e *Encoder) WriteInt(i int64) error     { return e.enc.WriteToken(jsontext.Int(i)) }
func (e *Encoder) WriteUint(u uint64) error   { return e.enc.WriteToken(jsontext.Uint(u)) }
func (e *Encoder) WriteString(s string) error { return e.enc.WriteToken(jsontext.String(s)) }
func (e *Encoder) WriteName(n string) error   { return e.enc.WriteToken(jsontext.String(n)) }
func (e *Encoder) BeginArray() error          { return e.enc.WriteToken(jsontext.BeginArray) }
func (e *Encoder) EndArray() error            { return e.enc.WriteToken(jsontext.EndArray) }
func (e *Encoder) BeginObject() error         { return e.enc.WriteToken(jsontext.BeginObject) }
func (e *Encoder) EndObject() error           { return e.enc.WriteToken(jsontext.EndObject) }

// WriteFloat writes f. Integral values keep a ".0" so they read back as
// doubles rather than integers.
func (e *Encoder) WriteFloat(f float64) error {
	if f != math.Trunc(f) || math.Abs(f) >= 1e21 {
		return e.enc.WriteToken(jsontext.Float(f))
	}
	return e.enc.WriteValue(jsontext.Value(strconv.FormatFloat(f, 'f', -1, 64) + ".0"))
}

// WriteDecimal writes d as a bare number literal, keeping every digit and
// the scale of its fraction. An integral d that fits in 64 bits gets a ".0"
// so it reads back as a decimal rather than an integer.
func (e *Encoder) WriteDecimal(d decimal.Decimal) error {
	text := d.String()
	if d.Exponent() < 0 {
		text = d.StringFixed(-d.Exponent())
	}
	if !strings.ContainsAny(text, ".eE") {
		if _, err := strconv.ParseInt(text, 10, 64); err == nil {
			text += ".0"
		}
	}
	return e.enc.WriteValue(jsontext.Value(text))
}
