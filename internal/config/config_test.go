package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/formatter"
	"github.com/mcncl/jsoncompat/internal/naming"
	"github.com/mcncl/jsoncompat/internal/parser"
	"github.com/mcncl/jsoncompat/internal/token"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, FormattingNone, cfg.Formatting)
	assert.Equal(t, NullValueInclude, cfg.NullValueHandling)
	assert.Equal(t, DateParseDateTime, cfg.DateParseHandling)
	assert.Equal(t, FloatParseDouble, cfg.FloatParseHandling)
	assert.Equal(t, CommentSkip, cfg.Reader.CommentHandling)
	assert.True(t, cfg.Reader.AllowTrailingCommas)
	assert.True(t, cfg.Enums.AllowIntegerValues)
	assert.Empty(t, cfg.Naming.Strategy)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, parser.DefaultOptions(), cfg.ParserOptions())
	assert.Equal(t, "", cfg.Indent())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
formatting: indented
null_value_handling: Ignore
date_parse_handling: DateTimeOffset
float_parse_handling: DECIMAL
max_depth: 64
naming:
  strategy: camelCase
  process_dictionary_keys: true
enums:
  naming: snake
  allow_integer_values: false
reader:
  comment_handling: disallow
  allow_trailing_commas: false
output:
  format: yaml
  indent: "    "
dev:
  debug: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, FormattingIndented, cfg.Formatting)
	assert.Equal(t, NullValueIgnore, cfg.NullValueHandling)
	assert.Equal(t, DateParseDateTimeOffset, cfg.DateParseHandling)
	assert.Equal(t, FloatParseDecimal, cfg.FloatParseHandling)
	assert.Equal(t, CommentDisallow, cfg.Reader.CommentHandling)
	assert.False(t, cfg.Reader.AllowTrailingCommas)
	assert.False(t, cfg.Enums.AllowIntegerValues)
	assert.True(t, cfg.Dev.Debug)

	assert.Equal(t, parser.Options{
		Numeric:  parser.PreferDecimal,
		Temporal: parser.AsInstantWithOffset,
		MaxDepth: 64,
		Comments: token.CommentsDisallow,
	}, cfg.ParserOptions())
	assert.Equal(t, "    ", cfg.Indent())

	f, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, formatter.FormatYAML, f)

	g, err := cfg.GeneratorOptions()
	require.NoError(t, err)
	assert.True(t, g.IgnoreNulls)
	assert.Equal(t, "userId", g.Naming.DictionaryKey("user_id"))

	opts, err := cfg.EnumOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestConfig_SettingSpellings(t *testing.T) {
	for _, spelling := range []string{"date_time_offset", "DateTimeOffset", "datetimeoffset", "DATE_TIME_OFFSET"} {
		t.Run(spelling, func(t *testing.T) {
			var cfg Config
			require.NoError(t, yaml.Unmarshal([]byte("date_parse_handling: "+spelling), &cfg))
			assert.Equal(t, DateParseDateTimeOffset, cfg.DateParseHandling)
		})
	}
}

func TestConfig_InvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		sentinel error
	}{
		{"unknown member", "formatting: pretty", errors.ErrUnknownMember},
		{"integer value", "float_parse_handling: 1", errors.ErrIntegerNotAllowed},
		{"not a scalar", "reader:\n  comment_handling: [skip]", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
			if tt.sentinel != nil {
				assert.True(t, stderrors.Is(err, tt.sentinel), "got %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	cfg.Naming.Strategy = "bogus"
	cfg.Output.Format = "xml"
	cfg.MaxDepth = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
	assert.Contains(t, err.Error(), "Config.Naming.Strategy")
	assert.Contains(t, err.Error(), "Config.Output.Format")
	assert.Contains(t, err.Error(), "Config.MaxDepth")

	cfg = NewConfig()
	cfg.Formatting = Formatting(7)
	assert.Error(t, cfg.Validate())
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
}

func TestConfig_MergeCLI(t *testing.T) {
	cfg := NewConfig()
	err := cfg.MergeCLI(Overrides{
		Float:       "decimal",
		Dates:       "none",
		Comments:    "allow",
		Format:      "cbor",
		Naming:      "kebab",
		Indent:      "\t",
		IgnoreNulls: true,
		Debug:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, FloatParseDecimal, cfg.FloatParseHandling)
	assert.Equal(t, DateParseNone, cfg.DateParseHandling)
	assert.Equal(t, CommentAllow, cfg.Reader.CommentHandling)
	assert.Equal(t, "cbor", cfg.Output.Format)
	assert.Equal(t, FormattingIndented, cfg.Formatting)
	assert.Equal(t, "\t", cfg.Indent())
	assert.Equal(t, NullValueIgnore, cfg.NullValueHandling)
	assert.True(t, cfg.Dev.Debug)

	s, err := cfg.NamingStrategy()
	require.NoError(t, err)
	assert.Equal(t, "kebab", naming.NameOf(s.Transform))
	assert.Equal(t, "user-name", s.Transform.Convert("UserName"))
	assert.True(t, s.ProcessDictionaryKeys)
}

func TestConfig_MergeCLIRejectsBadValues(t *testing.T) {
	err := NewConfig().MergeCLI(Overrides{Dates: "tomorrow"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownMember))

	err = NewConfig().MergeCLI(Overrides{Format: "xml"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
}

func TestConfig_LoadConfigWithCLI(t *testing.T) {
	path := writeConfig(t, "float_parse_handling: decimal\noutput:\n  format: msgpack\n")

	cfg, err := LoadConfigWithCLI(path, Overrides{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, FloatParseDecimal, cfg.FloatParseHandling)
	assert.Equal(t, "json", cfg.Output.Format)

	cfg, err = LoadConfigWithCLI("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestConfig_MarshalUsesWireNames(t *testing.T) {
	out, err := yaml.Marshal(NewConfig())
	require.NoError(t, err)
	assert.Contains(t, string(out), "date_parse_handling: date_time")
	assert.Contains(t, string(out), "comment_handling: skip")
	assert.Equal(t, "date_time_offset", DateParseDateTimeOffset.String())
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	configPath := filepath.Join(root, ".jsoncompat.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("formatting: indented\n"), 0o644))

	t.Chdir(nested)
	found := FindConfigFile()
	require.NotEmpty(t, found)

	// Temp dirs may sit behind symlinks, so compare resolved paths.
	want, err := filepath.EvalSymlinks(configPath)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
