package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteGrid writes each file (relative path to HCL content) under a fresh
// temporary directory and returns that directory.
func WriteGrid(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create grid dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write grid file %s: %v", name, err)
		}
	}
	return dir
}
