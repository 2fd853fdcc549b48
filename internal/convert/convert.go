// Package convert is the entry point for turning Go values into JSON text
// and back.
//
// Dynamic values (models.Value, any) and registered enum types go through
// the value decoder/encoder and the enum resolver. Everything else uses the
// json v2 codec, with hooks that hand those types back to the core wherever
// they appear inside a declared type.
package convert

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/jsonc"

	"github.com/mcncl/jsoncompat/internal/config"
	"github.com/mcncl/jsoncompat/internal/enum"
	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/generator"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/parser"
	"github.com/mcncl/jsoncompat/internal/token"
)

// Converter serializes and deserializes with one set of settings.
type Converter struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    *enum.Cache
	registry *enum.Registry

	parseOpts parser.Options
	gen       *generator.Generator
	enumOpts  []enum.Option

	mu           sync.RWMutex
	resolvers    map[reflect.Type]*enum.Resolver
	marshalers   []*json.Marshalers
	unmarshalers []*json.Unmarshalers
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithCache sets the enum table cache. Without it the converter gets its
// own cache reporting to its logger.
func WithCache(cache *enum.Cache) Option {
	return func(c *Converter) { c.cache = cache }
}

// New builds a Converter from cfg; a nil cfg means the defaults.
func New(cfg *config.Config, opts ...Option) (*Converter, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:       cfg,
		registry:  enum.NewRegistry(),
		resolvers: make(map[reflect.Type]*enum.Resolver),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.cache == nil {
		c.cache = enum.NewCache(c.logger)
	}

	genOpts, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}
	enumOpts, err := cfg.EnumOptions()
	if err != nil {
		return nil, err
	}
	c.gen = generator.NewGenerator(genOpts)
	c.enumOpts = append(enumOpts, enum.WithCache(c.cache))
	c.parseOpts = cfg.ParserOptions()

	c.marshalers = []*json.Marshalers{
		json.MarshalToFunc(func(enc *jsontext.Encoder, v models.Value) error {
			return c.gen.Encode(token.WrapEncoder(enc), v)
		}),
	}
	c.unmarshalers = []*json.Unmarshalers{
		json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *models.Value) error {
			val, err := c.decodeValue(dec)
			if err != nil {
				return err
			}
			*v = val
			return nil
		}),
		json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *any) error {
			val, err := c.decodeValue(dec)
			if err != nil {
				return err
			}
			*v = val.Interface()
			return nil
		}),
	}
	return c, nil
}

func (c *Converter) Config() *config.Config { return c.cfg }

// Register declares T as an enum with the given members. T is then read and
// written by name wherever it appears. Enum tables live for the process, so
// registering T again keeps the first registration.
func Register[T enum.Integer](c *Converter, members ...enum.Member) *enum.Resolver {
	d := enum.Describe[T](members...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.resolvers[d.Type]; ok {
		c.logger.Warn("enum type already registered; keeping the first registration", "type", d.TypeName())
		return r
	}
	r := enum.NewResolver(d, c.enumOpts...)
	c.resolvers[d.Type] = r
	c.registry.Register(d)
	c.logger.Debug("registered enum type", "type", d.TypeName(), "members", len(members))

	typ := d.Type
	c.marshalers = append(c.marshalers, json.MarshalToFunc(func(enc *jsontext.Encoder, v T) error {
		return c.resolver(typ).Write(token.WrapEncoder(enc), int64(v))
	}))
	c.unmarshalers = append(c.unmarshalers, json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *T) error {
		raw, err := dec.ReadValue()
		if err != nil {
			return err
		}
		s := token.NewScanner(raw)
		s.Next()
		i, err := c.resolver(typ).ReadToken(s)
		if err != nil {
			return err
		}
		*v = T(i)
		return nil
	}))
	return r
}

func (c *Converter) resolver(t reflect.Type) *enum.Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolvers[t]
}

// Enums lists the registered enum types.
func (c *Converter) Enums() []reflect.Type {
	return c.registry.Types()
}

func (c *Converter) marshalOptions() []json.Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts := []json.Options{json.WithMarshalers(json.JoinMarshalers(c.marshalers...))}
	if !c.ignoreNulls() {
		opts = append(opts, token.IndentOptions(c.cfg.Indent())...)
	}
	return opts
}

func (c *Converter) unmarshalOptions() []json.Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return []json.Options{
		json.WithUnmarshalers(json.JoinUnmarshalers(c.unmarshalers...)),
		json.MatchCaseInsensitiveNames(true),
	}
}

func (c *Converter) ignoreNulls() bool {
	return c.cfg.NullValueHandling == config.NullValueIgnore
}

// Serialize renders v as JSON text.
func (c *Converter) Serialize(v any) (string, error) {
	if val, ok := v.(models.Value); ok {
		return c.gen.EncodeToString(val, c.cfg.Indent())
	}

	data, err := json.Marshal(v, c.marshalOptions()...)
	if err != nil {
		return "", errors.NewEncodeError(fmt.Sprintf("failed to serialize %T", v), err)
	}
	if c.ignoreNulls() {
		if data, err = dropNullMembers(data, c.cfg.Indent()); err != nil {
			return "", errors.NewEncodeError(fmt.Sprintf("failed to serialize %T", v), err)
		}
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// Deserialize decodes text into a dynamic value. Empty or whitespace-only
// text is Null.
func (c *Converter) Deserialize(text string) (models.Value, error) {
	if strings.TrimSpace(text) == "" {
		return models.NullValue(), nil
	}
	c.logger.Debug("deserializing dynamic value",
		"numeric", numericName(c.parseOpts.Numeric),
		"temporal", c.cfg.DateParseHandling.String(),
		"bytes", len(text))
	return parser.ParseString(text, c.parseOpts)
}

// DeserializeInto decodes text into out, which must be a non-nil pointer.
// Empty or whitespace-only text leaves out untouched.
func (c *Converter) DeserializeInto(text string, out any) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	switch p := out.(type) {
	case *models.Value:
		v, err := c.Deserialize(text)
		if err != nil {
			return err
		}
		*p = v
		return nil
	case *any:
		v, err := c.Deserialize(text)
		if err != nil {
			return err
		}
		*p = v.Interface()
		return nil
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NewDecodeError(fmt.Sprintf("cannot deserialize into %T, need a non-nil pointer", out), errors.ErrUnsupported)
	}

	data, err := c.strict([]byte(text))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out, c.unmarshalOptions()...); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.NewDecodeError(fmt.Sprintf("failed to deserialize into %T", out), err)
	}
	return nil
}

// strict checks data against the reader settings and returns it as plain
// JSON, with comments and trailing commas removed.
func (c *Converter) strict(data []byte) ([]byte, error) {
	s := token.NewScanner(data,
		token.WithComments(c.parseOpts.Comments),
		token.WithTrailingCommas(c.parseOpts.TrailingCommas))
	for s.Next() {
	}
	if err := s.Err(); err != nil {
		var se *token.SyntaxError
		if stderrors.As(err, &se) {
			return nil, errors.NewDecodeError(fmt.Sprintf("JSON syntax error at offset %d: %s", se.Offset, se.Msg), err)
		}
		return nil, errors.NewDecodeError("invalid JSON", err)
	}
	if c.parseOpts.Comments == token.CommentsDisallow && !c.parseOpts.TrailingCommas {
		return data, nil
	}
	return jsonc.ToJSON(data), nil
}

func (c *Converter) decodeValue(dec *jsontext.Decoder) (models.Value, error) {
	raw, err := dec.ReadValue()
	if err != nil {
		return models.Value{}, err
	}
	return parser.ParseBytes(raw, c.parseOpts)
}

func numericName(p parser.NumericPolicy) string {
	if p == parser.PreferDecimal {
		return "decimal"
	}
	return "double"
}

var defaultConverter = sync.OnceValue(func() *Converter {
	c, err := New(nil)
	if err != nil {
		panic("convert: default settings are invalid: " + err.Error())
	}
	return c
})

// Default returns the converter using the default settings.
func Default() *Converter { return defaultConverter() }

// Serialize renders v with the default settings.
func Serialize(v any) (string, error) { return Default().Serialize(v) }

// Deserialize decodes text with the default settings.
func Deserialize(text string) (models.Value, error) { return Default().Deserialize(text) }

// DeserializeInto decodes text into out with the default settings.
func DeserializeInto(text string, out any) error { return Default().DeserializeInto(text, out) }
