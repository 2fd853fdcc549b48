package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsoncompat/internal/enum"
	"github.com/mcncl/jsoncompat/internal/naming"
)

// Formatting selects compact or indented JSON output.
type Formatting int

const (
	FormattingNone Formatting = iota
	FormattingIndented
)

// NullValueHandling decides whether null object members are written.
type NullValueHandling int

const (
	NullValueInclude NullValueHandling = iota
	NullValueIgnore
)

// DateParseHandling decides what date-like strings decode to.
type DateParseHandling int

const (
	DateParseNone DateParseHandling = iota
	DateParseDateTime
	DateParseDateTimeOffset
)

// FloatParseHandling decides what non-integer numbers decode to.
type FloatParseHandling int

const (
	FloatParseDouble FloatParseHandling = iota
	FloatParseDecimal
)

// CommentHandling decides what the reader does with comments.
type CommentHandling int

const (
	CommentDisallow CommentHandling = iota
	CommentSkip
	CommentAllow
)

// Settings are spelled in snake_case in YAML; the member names and any
// case variation of either spelling are accepted too.
func settingResolver(d enum.Descriptor) *enum.Resolver {
	return enum.NewResolver(d, enum.WithNaming(naming.Snake), enum.WithIntegerValues(false))
}

var (
	formattingEnum = settingResolver(enum.Describe[Formatting](
		enum.Of(FormattingNone, "None"),
		enum.Of(FormattingIndented, "Indented"),
	))
	nullValueEnum = settingResolver(enum.Describe[NullValueHandling](
		enum.Of(NullValueInclude, "Include"),
		enum.Of(NullValueIgnore, "Ignore"),
	))
	dateParseEnum = settingResolver(enum.Describe[DateParseHandling](
		enum.Of(DateParseNone, "None"),
		enum.Of(DateParseDateTime, "DateTime"),
		enum.Of(DateParseDateTimeOffset, "DateTimeOffset"),
	))
	floatParseEnum = settingResolver(enum.Describe[FloatParseHandling](
		enum.Of(FloatParseDouble, "Double"),
		enum.Of(FloatParseDecimal, "Decimal"),
	))
	commentEnum = settingResolver(enum.Describe[CommentHandling](
		enum.Of(CommentDisallow, "Disallow"),
		enum.Of(CommentSkip, "Skip"),
		enum.Of(CommentAllow, "Allow"),
	))
)

func decodeSetting[T enum.Integer](r *enum.Resolver, node *yaml.Node, out *T) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %s must be a single value", node.Line, r.Descriptor().TypeName())
	}
	v, err := enum.Parse[T](r, node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*out = v
	return nil
}

func settingName[T enum.Integer](r *enum.Resolver, v T) string {
	name, err := enum.Format(r, v)
	if err != nil {
		return fmt.Sprintf("%s(%d)", r.Descriptor().TypeName(), int64(v))
	}
	return name
}

func ParseFormatting(s string) (Formatting, error) { return enum.Parse[Formatting](formattingEnum, s) }

func ParseNullValueHandling(s string) (NullValueHandling, error) {
	return enum.Parse[NullValueHandling](nullValueEnum, s)
}

func ParseDateParseHandling(s string) (DateParseHandling, error) {
	return enum.Parse[DateParseHandling](dateParseEnum, s)
}

func ParseFloatParseHandling(s string) (FloatParseHandling, error) {
	return enum.Parse[FloatParseHandling](floatParseEnum, s)
}

func ParseCommentHandling(s string) (CommentHandling, error) {
	return enum.Parse[CommentHandling](commentEnum, s)
}

func (f Formatting) String() string         { return settingName(formattingEnum, f) }
func (n NullValueHandling) String() string  { return settingName(nullValueEnum, n) }
func (d DateParseHandling) String() string  { return settingName(dateParseEnum, d) }
func (f FloatParseHandling) String() string { return settingName(floatParseEnum, f) }
func (c CommentHandling) String() string    { return settingName(commentEnum, c) }

func (f *Formatting) UnmarshalYAML(node *yaml.Node) error {
	return decodeSetting(formattingEnum, node, f)
}

func (n *NullValueHandling) UnmarshalYAML(node *yaml.Node) error {
	return decodeSetting(nullValueEnum, node, n)
}

func (d *DateParseHandling) UnmarshalYAML(node *yaml.Node) error {
	return decodeSetting(dateParseEnum, node, d)
}

func (f *FloatParseHandling) UnmarshalYAML(node *yaml.Node) error {
	return decodeSetting(floatParseEnum, node, f)
}

func (c *CommentHandling) UnmarshalYAML(node *yaml.Node) error {
	return decodeSetting(commentEnum, node, c)
}

func (f Formatting) MarshalYAML() (any, error)         { return f.String(), nil }
func (n NullValueHandling) MarshalYAML() (any, error)  { return n.String(), nil }
func (d DateParseHandling) MarshalYAML() (any, error)  { return d.String(), nil }
func (f FloatParseHandling) MarshalYAML() (any, error) { return f.String(), nil }
func (c CommentHandling) MarshalYAML() (any, error)    { return c.String(), nil }
