package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// GenerateTestDataset writes a dataset JSON file with numRegions regions named
// R01, R02, ... whose overall counts grow with the index (R01 is the
// smallest). Returns the file path and a cleanup function.
func GenerateTestDataset(t *testing.T, numRegions int) (string, func()) {
	t.Helper()

	if numRegions < 1 {
		numRegions = 1
	}

	var content strings.Builder
	content.WriteString("{\n")
	for i := 1; i <= numRegions; i++ {
		overall := int64(i) * 1000
		fmt.Fprintf(&content, `  "R%02d": {"name": "Region %d", "overall": %d, "total": %d, "partial": %d, "precaution": %d}`,
			i, i, overall, overall/2, overall/3, overall/10)
		if i < numRegions {
			content.WriteString(",")
		}
		content.WriteString("\n")
	}
	content.WriteString("}\n")

	path := WriteTempFile(t, "test_dataset_*.json", content.String())
	cleanup := func() {
		os.Remove(path)
	}
	return path, cleanup
}

// SampleMap returns an SVG with one path per id.
func SampleMap(ids ...string) string {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">`)
	for i, id := range ids {
		fmt.Fprintf(&b, `<path id="%s" d="M%d 0h10v10h-10z"></path>`, id, i*10)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

// WriteTempFile writes content to a new temporary file that is removed when
// the test ends.
func WriteTempFile(t *testing.T, pattern, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
