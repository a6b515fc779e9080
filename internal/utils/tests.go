package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// CreateTempFile creates an empty temp file under t.TempDir() and returns
// its path plus a cleanup func. Mirrors the teacher's test helper so every
// package's disk-backed tests share the same temp-file convention.
func CreateTempFile(t *testing.T) (string, func()) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, fmt.Sprintf("pagedb-%d.db", rand.Int63()))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cleanup := func() {
		_ = os.Remove(path)
	}
	return path, cleanup
}
