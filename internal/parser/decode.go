package parser

import (
	stderrors "errors"
	"fmt"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/token"
)

// NumericPolicy picks the representation of a number that does not fit
// losslessly in an int64.
type NumericPolicy uint8

const (
	PreferDouble NumericPolicy = iota
	PreferDecimal
)

// TemporalPolicy controls whether date-like strings become instants.
type TemporalPolicy uint8

const (
	TemporalOff TemporalPolicy = iota
	AsInstant
	AsInstantWithOffset
)

// Decode reads one value starting at the reader's current token. On success
// the reader is left on the last token of that value. Comment tokens found
// where a value is expected are skipped.
func Decode(r token.Reader, opts Options) (models.Value, error) {
	d := decoder{r: r, opts: opts}
	return d.value()
}

type decoder struct {
	r     token.Reader
	opts  Options
	depth int
}

func (d *decoder) value() (models.Value, error) {
	if err := d.skipComments(); err != nil {
		return models.Value{}, err
	}

	switch kind := d.r.Kind(); kind {
	case token.Null:
		return models.NullValue(), nil
	case token.True:
		return models.BoolValue(true), nil
	case token.False:
		return models.BoolValue(false), nil
	case token.Number:
		return d.number()
	case token.String:
		return d.string(), nil
	case token.BeginArray:
		return d.array()
	case token.BeginObject:
		return d.object()
	default:
		return models.Value{}, d.unexpected(kind, "expecting a value")
	}
}

func (d *decoder) number() (models.Value, error) {
	if i, ok := d.r.Int64(); ok {
		return models.IntegerValue(i), nil
	}
	if d.opts.Numeric == PreferDecimal {
		dec, err := d.r.Decimal()
		if err != nil {
			return models.Value{}, errors.NewDecodeError(fmt.Sprintf("invalid number at offset %d", d.r.Pos()), err)
		}
		return models.DecimalValue(dec), nil
	}
	f, err := d.r.Float64()
	if err != nil {
		return models.Value{}, errors.NewDecodeError(fmt.Sprintf("invalid number at offset %d", d.r.Pos()), err)
	}
	return models.DoubleValue(f), nil
}

func (d *decoder) string() models.Value {
	switch d.opts.Temporal {
	case AsInstantWithOffset:
		if t, ok := d.r.DateTimeOffset(); ok {
			return models.OffsetValue(t)
		}
	case AsInstant:
		if t, kind, ok := d.r.DateTime(); ok {
			return models.InstantValue(t, kind)
		}
	}
	return models.StringValue(d.r.Text())
}

func (d *decoder) array() (models.Value, error) {
	if err := d.enter(); err != nil {
		return models.Value{}, err
	}
	defer d.leave()

	elems := []models.Value{}
	for d.r.Next() {
		if err := d.skipComments(); err != nil {
			return models.Value{}, err
		}
		if d.r.Kind() == token.EndArray {
			return models.ArrayValue(elems...), nil
		}
		v, err := d.value()
		if err != nil {
			return models.Value{}, err
		}
		elems = append(elems, v)
	}
	return models.Value{}, d.ended("unexpected end of input inside array")
}

func (d *decoder) object() (models.Value, error) {
	if err := d.enter(); err != nil {
		return models.Value{}, err
	}
	defer d.leave()

	m := models.NewMap()
	for d.r.Next() {
		if err := d.skipComments(); err != nil {
			return models.Value{}, err
		}
		switch kind := d.r.Kind(); kind {
		case token.EndObject:
			return models.ObjectValue(m), nil
		case token.PropertyName:
			name := d.r.Text()
			if !d.r.Next() {
				return models.Value{}, d.ended(fmt.Sprintf("unexpected end of input after property %q", name))
			}
			v, err := d.value()
			if err != nil {
				return models.Value{}, err
			}
			m.Set(name, v)
		default:
			return models.Value{}, d.unexpected(kind, "expecting property name")
		}
	}
	return models.Value{}, d.ended("unexpected end of input inside object")
}

func (d *decoder) skipComments() error {
	for d.r.Kind() == token.Comment {
		if !d.r.Next() {
			return d.ended("expecting a value after comment")
		}
	}
	return nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.opts.MaxDepth > 0 && d.depth > d.opts.MaxDepth {
		return errors.NewDecodeError(fmt.Sprintf("maximum depth %d exceeded at offset %d", d.opts.MaxDepth, d.r.Pos()), errors.ErrUnsupported)
	}
	return nil
}

func (d *decoder) leave() { d.depth-- }

// ended reports that the reader stopped early, preferring the reader's own
// syntax error when it has one.
func (d *decoder) ended(msg string) error {
	if err := d.r.Err(); err != nil {
		return syntaxError(err)
	}
	return errors.NewDecodeError(msg, errors.ErrUnexpectedEnd)
}

func (d *decoder) unexpected(kind token.Kind, msg string) error {
	return errors.NewDecodeError(fmt.Sprintf("%s, found %s at offset %d", msg, kind, d.r.Pos()), errors.ErrUnexpectedToken)
}

func syntaxError(err error) error {
	var syn *token.SyntaxError
	if stderrors.As(err, &syn) {
		return errors.NewDecodeError(fmt.Sprintf("JSON syntax error at offset %d: %s", syn.Offset, syn.Msg), syn)
	}
	return errors.NewDecodeError("failed to read JSON", err)
}
