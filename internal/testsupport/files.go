package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes contents to path, creating parent directories as needed,
// and fails the test on error.
func WriteFile(t testing.TB, path string, contents []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteManifest writes a minimal saved-card manifest containing one record
// per key and returns its path.
func WriteManifest(t testing.TB, dir string, keys ...string) string {
	t.Helper()
	records := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		records = append(records, map[string]any{
			"key":  key,
			"data": map[string]any{"width": 1500, "height": 2100},
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	return WriteFile(t, filepath.Join(dir, "cards.cardconjurer"), data)
}
