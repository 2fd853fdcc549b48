package generator

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/token"
)

// Options controls how dynamic values are written.
type Options struct {
	// IgnoreNulls drops object members whose value is Null. Array elements
	// are always written.
	IgnoreNulls bool
	// Naming rewrites object keys when ProcessDictionaryKeys is set.
	Naming naming.Strategy
}

// Generator writes dynamic values as JSON tokens.
type Generator struct {
	opts Options
}

// NewGenerator creates a new Generator instance
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Encode writes v to w. Any failure is returned as a single encode error.
func (g *Generator) Encode(w token.Writer, v models.Value) error {
	if err := g.write(w, v); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return err
		}
		return errors.NewEncodeError("failed to write JSON", err)
	}
	return nil
}

// EncodeToString renders v as JSON text, indented when indent is non-empty.
func (g *Generator) EncodeToString(v models.Value, indent string) (string, error) {
	var buf bytes.Buffer
	if err := g.Encode(token.NewEncoder(&buf, token.WithIndent(indent)), v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (g *Generator) write(w token.Writer, v models.Value) error {
	switch v.Kind() {
	case models.Null:
		return w.WriteNull()
	case models.Bool:
		return w.WriteBool(v.Bool())
	case models.Integer:
		return w.WriteInt(v.Int())
	case models.Decimal:
		return w.WriteDecimal(v.Decimal())
	case models.Double:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.NewEncodeError(fmt.Sprintf("%v is not a valid JSON number", f), errors.ErrUnsupported)
		}
		return w.WriteFloat(f)
	case models.String:
		return w.WriteString(v.Str())
	case models.Instant:
		return w.WriteString(token.FormatInstant(v.Time(), v.TimeKind()))
	case models.InstantWithOffset:
		return w.WriteString(token.FormatOffset(v.Time()))
	case models.Array:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range v.Elems() {
			if err := g.write(w, e); err != nil {
				return err
			}
		}
		return w.EndArray()
	case models.Object:
		if err := w.BeginObject(); err != nil {
			return err
		}
		for _, m := range v.Map().Members() {
			if g.opts.IgnoreNulls && m.Value.IsNull() {
				continue
			}
			if err := w.WriteName(g.opts.Naming.DictionaryKey(m.Key)); err != nil {
				return err
			}
			if err := g.write(w, m.Value); err != nil {
				return err
			}
		}
		return w.EndObject()
	default:
		return errors.NewEncodeError(fmt.Sprintf("unknown value kind %s", v.Kind()), errors.ErrUnsupported)
	}
}
