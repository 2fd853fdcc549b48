package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsoncompat/internal/enum"
	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/formatter"
	"github.com/mcncl/jsoncompat/internal/generator"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/parser"
	"github.com/mcncl/jsoncompat/internal/token"
)

// DefaultIndent is used for indented output when no indent is configured.
const DefaultIndent = "  "

// Config represents the complete serializer configuration
type Config struct {
	Formatting         Formatting         `yaml:"formatting" validate:"oneof=0 1"`
	NullValueHandling  NullValueHandling  `yaml:"null_value_handling" validate:"oneof=0 1"`
	DateParseHandling  DateParseHandling  `yaml:"date_parse_handling" validate:"oneof=0 1 2"`
	FloatParseHandling FloatParseHandling `yaml:"float_parse_handling" validate:"oneof=0 1"`
	// MaxDepth bounds nesting on read; zero means unbounded.
	MaxDepth int          `yaml:"max_depth" validate:"gte=0"`
	Naming   NamingConfig `yaml:"naming"`
	Enums    EnumsConfig  `yaml:"enums"`
	Reader   ReaderConfig `yaml:"reader"`
	Output   OutputConfig `yaml:"output"`
	Dev      DevConfig    `yaml:"dev"`
}

// NamingConfig controls key naming on write
type NamingConfig struct {
	Strategy              string `yaml:"strategy" validate:"naming_strategy"`
	ProcessDictionaryKeys bool   `yaml:"process_dictionary_keys"`
}

// EnumsConfig controls enum name resolution
type EnumsConfig struct {
	Naming             string `yaml:"naming" validate:"naming_strategy"`
	AllowIntegerValues bool   `yaml:"allow_integer_values"`
}

// ReaderConfig controls what the JSON reader tolerates
type ReaderConfig struct {
	CommentHandling     CommentHandling `yaml:"comment_handling" validate:"oneof=0 1 2"`
	AllowTrailingCommas bool            `yaml:"allow_trailing_commas"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format string `yaml:"format" validate:"omitempty,output_format"`
	Indent string `yaml:"indent" validate:"max=16"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Formatting:         FormattingNone,
		NullValueHandling:  NullValueInclude,
		DateParseHandling:  DateParseDateTime,
		FloatParseHandling: FloatParseDouble,
		Enums: EnumsConfig{
			AllowIntegerValues: true,
		},
		Reader: ReaderConfig{
			CommentHandling:     CommentSkip,
			AllowTrailingCommas: true,
		},
		Output: OutputConfig{
			Format: string(formatter.FormatJSON),
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	// Start with defaults
	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsoncompat.yml", ".jsoncompat.yaml", "jsoncompat.yml", "jsoncompat.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "naming_strategy", func(fl validator.FieldLevel) bool {
		_, ok := naming.Lookup(fl.Field().String())
		return ok
	})
	mustRegister(v, "output_format", func(fl validator.FieldLevel) bool {
		_, err := formatter.ParseFormat(fl.Field().String())
		return err == nil
	})
	return v
}()

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: registering %s validation: %v", tag, err))
	}
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewConfigError("invalid configuration", err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %q fails %s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return errors.NewConfigError("invalid configuration: "+strings.Join(problems, "; "), err)
}

// Overrides holds CLI flags. Empty strings and false booleans leave the
// config untouched.
type Overrides struct {
	Float       string
	Dates       string
	Comments    string
	Format      string
	Naming      string
	Indent      string
	IgnoreNulls bool
	Debug       bool
}

// MergeCLI applies explicit CLI overrides on top of c.
func (c *Config) MergeCLI(o Overrides) error {
	if o.Float != "" {
		v, err := ParseFloatParseHandling(o.Float)
		if err != nil {
			return errors.NewConfigError("invalid --float value", err)
		}
		c.FloatParseHandling = v
	}
	if o.Dates != "" {
		v, err := ParseDateParseHandling(o.Dates)
		if err != nil {
			return errors.NewConfigError("invalid --dates value", err)
		}
		c.DateParseHandling = v
	}
	if o.Comments != "" {
		v, err := ParseCommentHandling(o.Comments)
		if err != nil {
			return errors.NewConfigError("invalid --comments value", err)
		}
		c.Reader.CommentHandling = v
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.Naming != "" {
		c.Naming.Strategy = o.Naming
		c.Naming.ProcessDictionaryKeys = true
	}
	if o.Indent != "" {
		c.Formatting = FormattingIndented
		c.Output.Indent = o.Indent
	}
	if o.IgnoreNulls {
		c.NullValueHandling = NullValueIgnore
	}
	if o.Debug {
		c.Dev.Debug = true
	}
	return c.Validate()
}

// LoadConfigWithCLI loads the file at configPath (if any) and applies the
// CLI overrides.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}
	if err := cfg.MergeCLI(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParserOptions converts the read settings.
func (c *Config) ParserOptions() parser.Options {
	opts := parser.Options{
		Numeric:        parser.PreferDouble,
		Temporal:       parser.TemporalOff,
		MaxDepth:       c.MaxDepth,
		TrailingCommas: c.Reader.AllowTrailingCommas,
	}
	if c.FloatParseHandling == FloatParseDecimal {
		opts.Numeric = parser.PreferDecimal
	}
	switch c.DateParseHandling {
	case DateParseDateTime:
		opts.Temporal = parser.AsInstant
	case DateParseDateTimeOffset:
		opts.Temporal = parser.AsInstantWithOffset
	}
	switch c.Reader.CommentHandling {
	case CommentSkip:
		opts.Comments = token.CommentsSkip
	case CommentAllow:
		opts.Comments = token.CommentsAllow
	default:
		opts.Comments = token.CommentsDisallow
	}
	return opts
}

// Indent is the indent string for output, empty when formatting is none.
func (c *Config) Indent() string {
	if c.Formatting != FormattingIndented {
		return ""
	}
	if c.Output.Indent == "" {
		return DefaultIndent
	}
	return c.Output.Indent
}

// NamingStrategy resolves the configured key naming.
func (c *Config) NamingStrategy() (naming.Strategy, error) {
	t, ok := naming.Lookup(c.Naming.Strategy)
	if !ok {
		return naming.Strategy{}, errors.NewConfigError(
			fmt.Sprintf("unknown naming strategy %q (known: %s)", c.Naming.Strategy, strings.Join(naming.Names(), ", ")),
			errors.ErrUnsupported,
		)
	}
	return naming.Strategy{Transform: t, ProcessDictionaryKeys: c.Naming.ProcessDictionaryKeys}, nil
}

// GeneratorOptions converts the write settings.
func (c *Config) GeneratorOptions() (generator.Options, error) {
	strategy, err := c.NamingStrategy()
	if err != nil {
		return generator.Options{}, err
	}
	return generator.Options{
		IgnoreNulls: c.NullValueHandling == NullValueIgnore,
		Naming:      strategy,
	}, nil
}

// FormatterOptions converts the write settings for non-JSON output.
func (c *Config) FormatterOptions() (formatter.Options, error) {
	g, err := c.GeneratorOptions()
	if err != nil {
		return formatter.Options{}, err
	}
	return formatter.Options{Indent: c.Indent(), IgnoreNulls: g.IgnoreNulls, Naming: g.Naming}, nil
}

// OutputFormat resolves the configured output format; JSON when unset.
func (c *Config) OutputFormat() (formatter.Format, error) {
	if c.Output.Format == "" {
		return formatter.FormatJSON, nil
	}
	return formatter.ParseFormat(c.Output.Format)
}

// EnumOptions converts the enum settings.
func (c *Config) EnumOptions() ([]enum.Option, error) {
	t, ok := naming.Lookup(c.Enums.Naming)
	if !ok {
		return nil, errors.NewConfigError(fmt.Sprintf("unknown enum naming %q", c.Enums.Naming), errors.ErrUnsupported)
	}
	return []enum.Option{enum.WithNaming(t), enum.WithIntegerValues(c.Enums.AllowIntegerValues)}, nil
}
