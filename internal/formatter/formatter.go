package formatter

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/generator"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/token"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCBOR    Format = "cbor"
	FormatMsgpack Format = "msgpack"
	FormatBSON    Format = "bson"
)

var formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatMsgpack, FormatBSON}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.NewOutputError(fmt.Sprintf("unknown output format %q", s), errors.ErrUnsupported)
}

// Binary reports whether f produces non-text output.
func (f Format) Binary() bool {
	switch f {
	case FormatCBOR, FormatMsgpack, FormatBSON:
		return true
	}
	return false
}

// Options controls rendering. Indent only affects JSON and YAML.
type Options struct {
	Indent      string
	IgnoreNulls bool
	Naming      naming.Strategy
}

// Formatter renders dynamic values in one of the supported formats.
type Formatter struct {
	opts Options
	gen  *generator.Generator
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts Options) *Formatter {
	return &Formatter{
		opts: opts,
		gen:  generator.NewGenerator(generator.Options{IgnoreNulls: opts.IgnoreNulls, Naming: opts.Naming}),
	}
}

// Format writes v to w as f.
func (f *Formatter) Format(w io.Writer, format Format, v models.Value) error {
	var err error
	switch format {
	case FormatJSON, "":
		return f.gen.Encode(token.NewEncoder(w, token.WithIndent(f.opts.Indent)), v)
	case FormatYAML:
		err = f.writeYAML(w, v)
	case FormatCBOR:
		err = f.writeCBOR(w, v)
	case FormatMsgpack:
		err = f.writeMsgpack(w, v)
	case FormatBSON:
		err = f.writeBSON(w, v)
	default:
		return errors.NewOutputError(fmt.Sprintf("unknown output format %q", format), errors.ErrUnsupported)
	}
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write %s", format), err)
	}
	return nil
}

// members returns the object members to render, after null filtering and
// key naming.
func (f *Formatter) members(v models.Value) []models.Member {
	all := v.Map().Members()
	out := make([]models.Member, 0, len(all))
	for _, m := range all {
		if f.opts.IgnoreNulls && m.Value.IsNull() {
			continue
		}
		out = append(out, models.Member{Key: f.opts.Naming.DictionaryKey(m.Key), Value: m.Value})
	}
	return out
}

func instantText(v models.Value) string {
	if v.Kind() == models.InstantWithOffset {
		return token.FormatOffset(v.Time())
	}
	return token.FormatInstant(v.Time(), v.TimeKind())
}

// YAML

func (f *Formatter) writeYAML(w io.Writer, v models.Value) error {
	enc := yaml.NewEncoder(w)
	indent := len(f.opts.Indent)
	if indent < 2 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(f.yamlNode(v)); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (f *Formatter) yamlNode(v models.Value) *yaml.Node {
	switch v.Kind() {
	case models.Bool:
		return scalar("!!bool", strconv.FormatBool(v.Bool()))
	case models.Integer:
		return scalar("!!int", strconv.FormatInt(v.Int(), 10))
	case models.Decimal:
		s := v.Decimal().String()
		if !strings.ContainsAny(s, ".eE") {
			return scalar("!!int", s)
		}
		return scalar("!!float", s)
	case models.Double:
		return scalar("!!float", yamlFloat(v.Float()))
	case models.String:
		return scalar("!!str", v.Str())
	case models.Instant, models.InstantWithOffset:
		return scalar("!!str", instantText(v))
	case models.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Elems() {
			n.Content = append(n.Content, f.yamlNode(e))
		}
		return n
	case models.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range f.members(v) {
			n.Content = append(n.Content, scalar("!!str", m.Key), f.yamlNode(m.Value))
		}
		return n
	default:
		return scalar("!!null", "null")
	}
}

func yamlFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return ".nan"
	case math.IsInf(x, 1):
		return ".inf"
	case math.IsInf(x, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// CBOR

// Decimal fractions are CBOR tag 4: [exponent, mantissa].
const cborTagDecimalFraction = 4

// Date/time strings are CBOR tag 0.
const cborTagDateTimeString = 0

var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.EncOptions{
		IndefLength:   cbor.IndefLengthAllowed,
		BigIntConvert: cbor.BigIntConvertShortest,
	}.EncMode()
	if err != nil {
		panic("formatter: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()

func (f *Formatter) writeCBOR(w io.Writer, v models.Value) error {
	return f.cborValue(cborEncMode.NewEncoder(w), v)
}

func (f *Formatter) cborValue(enc *cbor.Encoder, v models.Value) error {
	switch v.Kind() {
	case models.Null:
		return enc.Encode(nil)
	case models.Bool:
		return enc.Encode(v.Bool())
	case models.Integer:
		return enc.Encode(v.Int())
	case models.Decimal:
		d := v.Decimal()
		return enc.Encode(cbor.Tag{
			Number:  cborTagDecimalFraction,
			Content: []any{int64(d.Exponent()), d.Coefficient()},
		})
	case models.Double:
		return enc.Encode(v.Float())
	case models.String:
		return enc.Encode(v.Str())
	case models.Instant, models.InstantWithOffset:
		if v.Kind() == models.Instant && v.TimeKind() == models.Unspecified {
			// No offset to put in an RFC 3339 string.
			return enc.Encode(instantText(v))
		}
		return enc.Encode(cbor.Tag{Number: cborTagDateTimeString, Content: v.Time().Format(time.RFC3339Nano)})
	case models.Array:
		if err := enc.StartIndefiniteArray(); err != nil {
			return err
		}
		for _, e := range v.Elems() {
			if err := f.cborValue(enc, e); err != nil {
				return err
			}
		}
		return enc.EndIndefinite()
	case models.Object:
		if err := enc.StartIndefiniteMap(); err != nil {
			return err
		}
		for _, m := range f.members(v) {
			if err := enc.Encode(m.Key); err != nil {
				return err
			}
			if err := f.cborValue(enc, m.Value); err != nil {
				return err
			}
		}
		return enc.EndIndefinite()
	}
	return fmt.Errorf("unknown value kind %s: %w", v.Kind(), errors.ErrUnsupported)
}

// MessagePack

func (f *Formatter) writeMsgpack(w io.Writer, v models.Value) error {
	enc := msgpack.NewEncoder(w)
	return f.msgpackValue(enc, v)
}

func (f *Formatter) msgpackValue(enc *msgpack.Encoder, v models.Value) error {
	switch v.Kind() {
	case models.Null:
		return enc.EncodeNil()
	case models.Bool:
		return enc.EncodeBool(v.Bool())
	case models.Integer:
		return enc.EncodeInt(v.Int())
	case models.Decimal:
		// MessagePack has no decimal type; the text keeps every digit.
		return enc.EncodeString(v.Decimal().String())
	case models.Double:
		return enc.EncodeFloat64(v.Float())
	case models.String:
		return enc.EncodeString(v.Str())
	case models.Instant, models.InstantWithOffset:
		return enc.EncodeString(instantText(v))
	case models.Array:
		if err := enc.EncodeArrayLen(len(v.Elems())); err != nil {
			return err
		}
		for _, e := range v.Elems() {
			if err := f.msgpackValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case models.Object:
		members := f.members(v)
		if err := enc.EncodeMapLen(len(members)); err != nil {
			return err
		}
		for _, m := range members {
			if err := enc.EncodeString(m.Key); err != nil {
				return err
			}
			if err := f.msgpackValue(enc, m.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown value kind %s: %w", v.Kind(), errors.ErrUnsupported)
}

// BSON

// bsonRootKey holds a non-object root, since a BSON document must be a
// document.
const bsonRootKey = "value"

func (f *Formatter) writeBSON(w io.Writer, v models.Value) error {
	var doc bson.D
	if v.Kind() == models.Object {
		d, err := f.bsonDocument(v)
		if err != nil {
			return err
		}
		doc = d
	} else {
		x, err := f.bsonValue(v)
		if err != nil {
			return err
		}
		doc = bson.D{{Key: bsonRootKey, Value: x}}
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (f *Formatter) bsonDocument(v models.Value) (bson.D, error) {
	members := f.members(v)
	doc := make(bson.D, 0, len(members))
	for _, m := range members {
		x, err := f.bsonValue(m.Value)
		if err != nil {
			return nil, err
		}
		doc = append(doc, bson.E{Key: m.Key, Value: x})
	}
	return doc, nil
}

func (f *Formatter) bsonValue(v models.Value) (any, error) {
	switch v.Kind() {
	case models.Null:
		return nil, nil
	case models.Bool:
		return v.Bool(), nil
	case models.Integer:
		return v.Int(), nil
	case models.Decimal:
		d128, err := primitive.ParseDecimal128(v.Decimal().String())
		if err != nil {
			return nil, fmt.Errorf("decimal %s does not fit in Decimal128: %w", v.Decimal(), errors.ErrUnrepresentable)
		}
		return d128, nil
	case models.Double:
		return v.Float(), nil
	case models.String:
		return v.Str(), nil
	case models.Instant, models.InstantWithOffset:
		return v.Time(), nil
	case models.Array:
		arr := make(bson.A, 0, len(v.Elems()))
		for _, e := range v.Elems() {
			x, err := f.bsonValue(e)
			if err != nil {
				return nil, err
			}
			arr = append(arr, x)
		}
		return arr, nil
	case models.Object:
		return f.bsonDocument(v)
	}
	return nil, fmt.Errorf("unknown value kind %s: %w", v.Kind(), errors.ErrUnsupported)
}
