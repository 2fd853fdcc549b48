package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mcncl/jsoncompat/internal/errors" // Custom errors package
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/mcncl/jsoncompat/internal/token"
)

// Options combines the decoding policies with the reader settings used by
// the Parse entry points.
type Options struct {
	Numeric  NumericPolicy
	Temporal TemporalPolicy
	// MaxDepth bounds array/object nesting; zero means unbounded.
	MaxDepth int

	Comments       token.CommentHandling
	TrailingCommas bool
}

// DefaultOptions mirrors the serializer defaults: doubles, instants,
// comments skipped and trailing commas accepted.
func DefaultOptions() Options {
	return Options{
		Numeric:        PreferDouble,
		Temporal:       AsInstant,
		Comments:       token.CommentsSkip,
		TrailingCommas: true,
	}
}

func (o Options) scannerOptions() []token.ScannerOption {
	return []token.ScannerOption{
		token.WithComments(o.Comments),
		token.WithTrailingCommas(o.TrailingCommas),
	}
}

// ParseBytes decodes a document holding exactly one JSON value.
func ParseBytes(data []byte, opts Options) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	s := token.NewScanner(data, opts.scannerOptions()...)
	if !s.Next() {
		if err := s.Err(); err != nil {
			return models.Value{}, syntaxError(err)
		}
		return models.Value{}, errors.NewDecodeError("no JSON value found", errors.ErrUnexpectedEnd)
	}

	root, err := Decode(s, opts)
	if err != nil {
		return models.Value{}, err
	}

	// Only comments may follow the root value.
	for s.Next() {
		if s.Kind() != token.Comment {
			return models.Value{}, errors.NewDecodeError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}
	if err := s.Err(); err != nil {
		if stderrors.Is(err, errors.ErrMultipleJSON) {
			return models.Value{}, errors.NewDecodeError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return models.Value{}, syntaxError(err)
	}
	return root, nil
}

// Parse decodes the whole of reader.
func Parse(reader io.Reader, opts Options) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data, opts)
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts Options) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString), opts)
}

// ParseFile parses JSON from a file path. Files ending in .gz or .zst are
// decompressed first.
func ParseFile(filePath string, opts Options) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	var src io.Reader = file
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			return models.Value{}, errors.NewInputError(fmt.Sprintf("failed to open gzip stream '%s'", filePath), err)
		}
		defer func() { _ = gz.Close() }()
		src = gz
	case ".zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			return models.Value{}, errors.NewInputError(fmt.Sprintf("failed to open zstd stream '%s'", filePath), err)
		}
		defer zr.Close()
		src = zr
	}

	return Parse(src, opts)
}
