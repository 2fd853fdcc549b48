package e2e_test

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]any {
	if depth <= 0 {
		return map[string]any{
			"leaf_value": "data",
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]any)
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]any {
	result := make(map[string]any)
	for i := 0; i < fieldCount; i++ {
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			result[fmt.Sprintf("object_field_%d", i)] = map[string]any{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}
	return result
}

func benchmarkCLI(b *testing.B, name string, data any, args ...string) {
	b.Helper()
	tempDir := b.TempDir()

	jsonData, err := json.Marshal(data, json.Deterministic(true), jsontext.Multiline(true))
	require.NoError(b, err)
	jsonFile := filepath.Join(tempDir, name+".json")
	require.NoError(b, os.WriteFile(jsonFile, jsonData, 0644))
	outputFile := filepath.Join(tempDir, name+"_output")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmdArgs := append([]string{"run", "../../main.go", "-i", jsonFile, "-o", outputFile}, args...)
		output, err := exec.Command("go", cmdArgs...).CombinedOutput()
		require.NoError(b, err, "CLI command failed: %s", string(output))

		if err := os.Remove(outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing file: %v\n", err)
		}
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested JSON structures
func BenchmarkDeepNesting(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}
	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			benchmarkCLI(b, depth.name, generateNestedJSON(depth.depth, depth.width))
		})
	}
}

// BenchmarkWideStructures benchmarks performance with wide JSON structures (many fields)
func BenchmarkWideStructures(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	for _, count := range []int{10, 100, 1000} {
		name := fmt.Sprintf("Fields%d", count)
		b.Run(name, func(b *testing.B) {
			benchmarkCLI(b, name, generateWideJSON(count))
		})
	}
}

// BenchmarkOutputFormats compares the renderers on the same document.
func BenchmarkOutputFormats(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	data := generateWideJSON(500)
	for _, format := range []string{"json", "yaml", "cbor", "msgpack", "bson"} {
		b.Run(format, func(b *testing.B) {
			benchmarkCLI(b, format, data, "-f", format)
		})
	}
}
