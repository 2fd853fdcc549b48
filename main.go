package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsoncompat/internal/config"
	"github.com/mcncl/jsoncompat/internal/convert"
	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/formatter"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/parser"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file (.gz and .zst are decompressed). If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format      string `help:"Output format: json, yaml, cbor, msgpack or bson." short:"f"`
	Tree        bool   `help:"Print the typed value tree instead of re-encoding it." short:"t"`
	Float       string `help:"Non-integer numbers become: double or decimal."`
	Dates       string `help:"Date-like strings become: none, date_time or date_time_offset."`
	Comments    string `help:"Comments in the input: disallow, skip or allow."`
	Indent      string `help:"Indent output with this string (enables indented formatting)."`
	IgnoreNulls bool   `help:"Drop object members whose value is null."`
	Naming      string `help:"Naming strategy applied to object keys: camel, pascal, snake, kebab, screaming_snake, lower or upper."`
	Config      string `help:"Path to a config file. Defaults to .jsoncompat.yml found in the current directory or a parent." short:"c" type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug     bool
	Config    *config.Config
	Logger    *slog.Logger
	Converter *convert.Converter
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsoncompat"),
		kong.Description("Decode JSON into typed values and re-encode it as JSON, YAML, CBOR, MessagePack or BSON"),
		kong.UsageOnError(),
	)

	// No arguments means interactive mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsoncompat version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsoncompat --help\n")
		os.Exit(1)
	}
}

func overrides() config.Overrides {
	return config.Overrides{
		Float:       CLI.Float,
		Dates:       CLI.Dates,
		Comments:    CLI.Comments,
		Format:      CLI.Format,
		Naming:      CLI.Naming,
		Indent:      CLI.Indent,
		IgnoreNulls: CLI.IgnoreNulls,
		Debug:       CLI.Debug,
	}
}

// newContext loads the config and builds the logger and converter from it.
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides())
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if configPath != "" {
		logger.Debug("loaded config file", "path", configPath)
	}

	conv, err := convert.New(cfg, convert.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger, Converter: conv}, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	v, err := parseInput(ctx)
	if err != nil {
		return err
	}

	if CLI.Tree {
		return writeOutput([]byte(v.String()+"\n"), false)
	}

	format, err := ctx.Config.OutputFormat()
	if err != nil {
		return err
	}
	opts, err := ctx.Config.FormatterOptions()
	if err != nil {
		return err
	}
	ctx.Logger.Debug("rendering value", "kind", v.Kind().String(), "format", string(format))

	var buf bytes.Buffer
	if err := formatter.NewFormatter(opts).Format(&buf, format, v); err != nil {
		return err
	}
	return writeOutput(buf.Bytes(), format.Binary())
}

// parseInput reads JSON from file or stdin
func parseInput(ctx *Context) (models.Value, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input, ctx.Config.ParserOptions())
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput(ctx)
		}
		return models.Value{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read from stdin", err)
	}
	return deserialize(ctx, string(jsonData), "stdin")
}

func deserialize(ctx *Context, text, source string) (models.Value, error) {
	if strings.TrimSpace(text) == "" {
		return models.Value{}, errors.NewInputError(fmt.Sprintf("empty input received from %s", source), errors.ErrEmptyInput)
	}
	return ctx.Converter.Deserialize(text)
}

// writeOutput writes data to file or stdout. Text output always ends with a
// newline.
func writeOutput(data []byte, binary bool) error {
	if !binary && !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}

	if CLI.Output != "" {
		if err := os.WriteFile(CLI.Output, data, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (models.Value, error) {
	fmt.Fprintln(os.Stderr, "jsoncompat Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Value{}, errors.NewInputError("error reading input", err)
		}
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return deserialize(ctx, jsonBuilder.String(), "interactive input")
}
