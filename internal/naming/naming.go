// Package naming holds the pluggable name transforms applied to enum members
// and dictionary keys on their way to the wire.
package naming

import (
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// Transform maps a declared name to its serialized form. Name identifies the
// transform in config and logs; two transforms may share a name.
type Transform interface {
	Name() string
	Convert(s string) string
}

type funcTransform struct {
	name string
	fn   func(string) string
}

func (f funcTransform) Name() string            { return f.name }
func (f funcTransform) Convert(s string) string { return f.fn(s) }

// Func wraps fn as a Transform called name. Each call returns a distinct
// Transform, even for the same name.
func Func(name string, fn func(string) string) Transform {
	return &funcTransform{name: name, fn: fn}
}

// Built-in transforms.
var (
	Camel          = Func("camel", strcase.ToLowerCamel)
	Pascal         = Func("pascal", strcase.ToCamel)
	Snake          = Func("snake", strcase.ToSnake)
	Kebab          = Func("kebab", strcase.ToKebab)
	ScreamingSnake = Func("screaming_snake", strcase.ToScreamingSnake)
	Lower          = Func("lower", strings.ToLower)
	Upper          = Func("upper", strings.ToUpper)
)

var builtins = map[string]Transform{}

func init() {
	for _, t := range []Transform{Camel, Pascal, Snake, Kebab, ScreamingSnake, Lower, Upper} {
		builtins[normalize(t.Name())] = t
	}
}

// normalize folds "camelCase", "camel_case" and "camel" to one key.
func normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
	if name != "case" {
		name = strings.TrimSuffix(name, "case")
	}
	return name
}

// Lookup returns the built-in transform called name. The empty name and
// "none" resolve to a nil Transform with ok set.
func Lookup(name string) (Transform, bool) {
	n := normalize(name)
	if n == "" || n == "none" {
		return nil, true
	}
	t, ok := builtins[n]
	return t, ok
}

// Names lists the built-in transform names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, t := range builtins {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// Apply converts s with t, or returns s when t is nil.
func Apply(t Transform, s string) string {
	if t == nil {
		return s
	}
	return t.Convert(s)
}

// NameOf is the name of t; nil transforms are named "".
func NameOf(t Transform) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// Strategy is the naming policy for object keys.
type Strategy struct {
	Transform Transform
	// ProcessDictionaryKeys applies Transform to the keys of dynamic objects.
	ProcessDictionaryKeys bool
}

// DictionaryKey returns key as it should be written for a dynamic object.
func (s Strategy) DictionaryKey(key string) string {
	if !s.ProcessDictionaryKeys {
		return key
	}
	return Apply(s.Transform, key)
}
