package helpers

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// DefaultSourceLayout mirrors the default source directory relative to a project root.
const DefaultSourceLayout = "src/site/sphinx"

// FakeSphinxBuild writes an executable shell script standing in for sphinx-build
// and returns its path. Tests using it are skipped where no POSIX shell exists.
func FakeSphinxBuild(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-ins need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "sphinx-build")
	// #nosec G306 -- the stand-in must be executable
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake sphinx-build: %v", err)
	}
	return path
}

// NewSphinxProject creates a project root holding a minimal Sphinx source tree
// at DefaultSourceLayout and returns the root.
func NewSphinxProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, DefaultSourceLayout)
	if err := os.MkdirAll(src, 0o750); err != nil {
		t.Fatalf("failed to create source tree: %v", err)
	}
	files := map[string]string{
		"conf.py":   "project = 'test'\n",
		"index.rst": "Test\n====\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}
