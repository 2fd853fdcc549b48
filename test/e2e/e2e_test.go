package e2e_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const complexDocument = `{
	"id": 12345,
	"uuid": "550e8400-e29b-41d4-a716-446655440000",
	"created_at": "2023-05-20T14:56:23Z",
	"updated_at": null,
	"config": {
		"enabled": true,
		"timeout_seconds": 30,
		"ratio": 0.75,
		"features": ["logging", "metrics", "alerting"],
		"rate_limits": {"per_second": 100, "per_minute": 1000, "burst": 150},
		"environments": {
			"development": {"debug": true, "log_level": "debug"},
			"production": {"debug": false, "log_level": "info"}
		}
	},
	"users": [
		{"id": 1, "name": "Alice", "roles": ["admin", "user"], "metadata": {"last_login": "2023-05-19T10:30:00Z", "login_count": 42}},
		{"id": 2, "name": "Bob", "roles": [], "metadata": null}
	],
	"big": 123456789012345678901234567890,
	"unicode": "héllo ☃"
}`

func run(t *testing.T, stdin string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "CLI command failed: %s", stderr.String())
	return stdout.Bytes()
}

// TestEndToEnd_ComplexNestedStructures re-encodes a nested document and
// checks nothing was lost or reordered.
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexDocument), 0644))
	outputFile := filepath.Join(tempDir, "complex_out.json")

	run(t, "", "-i", jsonFile, "-o", outputFile, "--float", "decimal")

	out, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.JSONEq(t, complexDocument, string(out))
	assert.True(t, strings.HasPrefix(string(out), `{"id":12345,"uuid":`), "member order changed: %s", out)
	assert.Contains(t, string(out), `"big":123456789012345678901234567890`)
	assert.Contains(t, string(out), `"created_at":"2023-05-20T14:56:23Z"`)
}

func TestEndToEnd_BinaryFormats(t *testing.T) {
	t.Run("cbor", func(t *testing.T) {
		out := run(t, complexDocument, "-f", "cbor")
		var decoded map[string]any
		require.NoError(t, cbor.Unmarshal(out, &decoded))
		assert.Equal(t, uint64(12345), decoded["id"])
		assert.Equal(t, "héllo ☃", decoded["unicode"])
	})

	t.Run("bson", func(t *testing.T) {
		out := run(t, complexDocument, "-f", "bson", "--ignore-nulls")
		raw := bson.Raw(out)
		require.NoError(t, raw.Validate())
		assert.Equal(t, int64(12345), raw.Lookup("id").Int64())
		assert.Equal(t, "Alice", raw.Lookup("users", "0", "name").StringValue())
		_, err := raw.LookupErr("updated_at")
		assert.Error(t, err)
	})
}

func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		args     []string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", json: `{}`, expected: "{}\n"},
		{name: "EmptyArray", json: `[]`, expected: "[]\n"},
		{name: "SingleValue", json: `"just a string"`, expected: "\"just a string\"\n"},
		{name: "SingleNumber", json: `42`, expected: "42\n"},
		{name: "SingleBoolean", json: `true`, expected: "true\n"},
		{name: "SingleNull", json: `null`, expected: "null\n"},
		{name: "TrailingComma", json: `{"a": 1,}`, expected: "{\"a\":1}\n"},
		{name: "DuplicateKeyLastWins", json: `{"a": 1, "b": 2, "a": 3}`, expected: "{\"a\":3,\"b\":2}\n"},
		{name: "DeeplyNestedArray", json: `[[[[[[42]]]]]]`, expected: "[[[[[[42]]]]]]\n"},
		{name: "DateWithoutOffset", json: `"2002-02-22T13:14:15"`, expected: "\"2002-02-22T13:14:15\"\n"},
		{name: "DatesOff", json: `"2002-02-22"`, args: []string{"--dates", "none"}, expected: "\"2002-02-22\"\n"},
		{name: "TwoRootValues", json: `{} {}`, isError: true},
		{name: "InvalidJSON", json: `{"name": }`, isError: true},
		{name: "HugeExponent", json: `1e400`, isError: true},
		{name: "CommentsDisallowed", json: `// c` + "\n" + `1`, args: []string{"--comments", "disallow"}, isError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := exec.Command("go", append([]string{"run", "../../main.go"}, tc.args...)...)
			cmd.Stdin = strings.NewReader(tc.json)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			err := cmd.Run()
			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				return
			}
			require.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr.String())
			assert.Equal(t, tc.expected, stdout.String())
		})
	}
}
