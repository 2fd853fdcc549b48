package enum

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/token"
)

// Resolver reads and writes the members of one enum type.
type Resolver struct {
	desc          Descriptor
	table         *Table
	transform     naming.Transform
	allowIntegers bool
}

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	transform     naming.Transform
	allowIntegers bool
	cache         *Cache
}

// WithNaming applies transform to members without an explicit wire name.
func WithNaming(transform naming.Transform) Option {
	return func(c *resolverConfig) { c.transform = transform }
}

// WithIntegerValues controls whether raw integers are accepted on read and
// written for values with no declared member. Allowed by default.
func WithIntegerValues(allow bool) Option {
	return func(c *resolverConfig) { c.allowIntegers = allow }
}

// WithCache picks the table cache. DefaultCache is used otherwise.
func WithCache(cache *Cache) Option {
	return func(c *resolverConfig) { c.cache = cache }
}

func NewResolver(d Descriptor, opts ...Option) *Resolver {
	cfg := resolverConfig{allowIntegers: true, cache: DefaultCache()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver{
		desc:          d,
		table:         cfg.cache.Table(d, cfg.transform),
		transform:     cfg.transform,
		allowIntegers: cfg.allowIntegers,
	}
}

func (r *Resolver) Descriptor() Descriptor { return r.desc }

// Read resolves a raw value: a string, any Go integer, or a String or
// Integer models.Value.
func (r *Resolver) Read(raw any) (int64, error) {
	switch v := raw.(type) {
	case string:
		return r.ReadString(v)
	case int:
		return r.readInt(int64(v))
	case int8:
		return r.readInt(int64(v))
	case int16:
		return r.readInt(int64(v))
	case int32:
		return r.readInt(int64(v))
	case int64:
		return r.readInt(v)
	case uint:
		return r.readUint(uint64(v))
	case uint8:
		return r.readUint(uint64(v))
	case uint16:
		return r.readUint(uint64(v))
	case uint32:
		return r.readUint(uint64(v))
	case uint64:
		return r.readUint(v)
	case models.Value:
		switch v.Kind() {
		case models.String:
			return r.ReadString(v.Str())
		case models.Integer:
			return r.readInt(v.Int())
		}
		return 0, errors.NewResolveError(
			fmt.Sprintf("cannot resolve %s value as %s", v.Kind(), r.desc.TypeName()),
			errors.ErrUnsupported,
		)
	default:
		return 0, errors.NewResolveError(
			fmt.Sprintf("cannot resolve %T as %s", raw, r.desc.TypeName()),
			errors.ErrUnsupported,
		)
	}
}

// ReadString resolves a wire string. Integer text is accepted when integer
// values are allowed. For flags, a comma-separated list of members reads as
// their union.
func (r *Resolver) ReadString(s string) (int64, error) {
	if m, ok := r.table.Lookup(s); ok {
		return m.Value, nil
	}
	if r.desc.Flags && strings.Contains(s, ",") {
		return r.readFlags(s)
	}
	if isIntegerText(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return r.readInt(i)
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return r.readUint(u)
		}
		return 0, r.outOfRange(s)
	}
	return 0, errors.NewResolveError(
		fmt.Sprintf("requested value '%s' was not found in %s", s, r.desc.TypeName()),
		errors.ErrUnknownMember,
	)
}

func (r *Resolver) readFlags(s string) (int64, error) {
	var v int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		m, ok := r.table.Lookup(part)
		if !ok {
			return 0, errors.NewResolveError(
				fmt.Sprintf("requested value '%s' was not found in %s", part, r.desc.TypeName()),
				errors.ErrUnknownMember,
			)
		}
		v |= m.Value
	}
	return v, nil
}

func isIntegerText(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ReadToken resolves the token the reader is positioned on.
func (r *Resolver) ReadToken(tr token.Reader) (int64, error) {
	switch kind := tr.Kind(); kind {
	case token.String:
		return r.ReadString(tr.Text())
	case token.Number:
		if i, ok := tr.Int64(); ok {
			return r.readInt(i)
		}
		if u, ok := tr.Uint64(); ok {
			return r.readUint(u)
		}
		if strings.ContainsAny(tr.Text(), ".eE") {
			return 0, errors.NewResolveError(
				fmt.Sprintf("number %s at offset %d is not an integer %s value", tr.Text(), tr.Pos(), r.desc.TypeName()),
				errors.ErrUnsupported,
			)
		}
		return 0, r.outOfRange(tr.Text())
	default:
		return 0, errors.NewResolveError(
			fmt.Sprintf("unexpected %s at offset %d when reading %s", kind, tr.Pos(), r.desc.TypeName()),
			errors.ErrUnexpectedToken,
		)
	}
}

func (r *Resolver) readInt(i int64) (int64, error) {
	if !r.allowIntegers {
		return 0, r.integerNotAllowed(strconv.FormatInt(i, 10))
	}
	if !r.desc.FitsInt(i) {
		return 0, r.outOfRange(strconv.FormatInt(i, 10))
	}
	return i, nil
}

func (r *Resolver) readUint(u uint64) (int64, error) {
	if !r.allowIntegers {
		return 0, r.integerNotAllowed(strconv.FormatUint(u, 10))
	}
	if !r.desc.FitsUint(u) {
		return 0, r.outOfRange(strconv.FormatUint(u, 10))
	}
	return int64(u), nil
}

func (r *Resolver) integerNotAllowed(text string) error {
	return errors.NewResolveError(
		fmt.Sprintf("integer value %s is not allowed for %s", text, r.desc.TypeName()),
		errors.ErrIntegerNotAllowed,
	)
}

func (r *Resolver) outOfRange(text string) error {
	return errors.NewResolveError(
		fmt.Sprintf("integer value %s does not fit in %s", text, r.desc.TypeName()),
		errors.ErrOutOfRange,
	)
}

// Name returns the wire name of the member with value v. For flags, a value
// covered exactly by several members is named as a list.
func (r *Resolver) Name(v int64) (string, error) {
	name, ok := r.name(v)
	if !ok {
		return "", r.unknownValue(v)
	}
	return name, nil
}

func (r *Resolver) name(v int64) (string, bool) {
	if m, ok := r.table.Member(v); ok {
		return r.table.WireName(m, r.transform), true
	}
	if r.desc.Flags {
		return r.flagNames(v)
	}
	return "", false
}

// flagNames covers v with the largest members first and lists them in
// ascending order. It fails when bits remain uncovered.
func (r *Resolver) flagNames(v int64) (string, bool) {
	var candidates []Member
	for _, m := range r.desc.Members {
		if first, _ := r.table.Member(m.Value); m.Value != 0 && first.Name == m.Name {
			candidates = append(candidates, m)
		}
	}
	slices.SortFunc(candidates, func(a, b Member) int {
		switch ua, ub := uint64(a.Value), uint64(b.Value); {
		case ua > ub:
			return -1
		case ua < ub:
			return 1
		}
		return 0
	})

	rest := uint64(v)
	var picked []string
	for _, m := range candidates {
		bits := uint64(m.Value)
		if rest&bits == bits {
			picked = append(picked, r.table.WireName(m, r.transform))
			rest &^= bits
		}
	}
	if rest != 0 || len(picked) == 0 {
		return "", false
	}
	slices.Reverse(picked)
	return strings.Join(picked, ", "), true
}

// Write writes v as its wire name. A value with no declared member is
// written as a number when integer values are allowed.
func (r *Resolver) Write(w token.Writer, v int64) error {
	if name, ok := r.name(v); ok {
		return w.WriteString(name)
	}
	if !r.allowIntegers {
		return r.unknownValue(v)
	}
	if r.desc.Unsigned {
		return w.WriteUint(uint64(v))
	}
	return w.WriteInt(v)
}

func (r *Resolver) unknownValue(v int64) error {
	return errors.NewResolveError(
		fmt.Sprintf("%s has no member with value %s", r.desc.TypeName(), r.desc.Format(v)),
		errors.ErrUnknownMember,
	)
}

// Parse resolves raw into a T.
func Parse[T Integer](r *Resolver, raw any) (T, error) {
	v, err := r.Read(raw)
	if err != nil {
		return 0, err
	}
	return T(v), nil
}

// Format returns the wire name of v.
func Format[T Integer](r *Resolver, v T) (string, error) {
	return r.Name(int64(v))
}
