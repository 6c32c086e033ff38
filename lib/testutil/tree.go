// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteTree materializes a fixture tree under dir. Keys are
// slash-separated paths relative to dir, values the file contents.
// Parent directories are created as needed.
//
//	testutil.WriteTree(t, dir, map[string][]byte{
//		"index.html":    []byte("<html></html>"),
//		"assets/app.js": []byte("console.log(1)"),
//	})
func WriteTree(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		WriteFile(t, dir, name, data)
	}
}

// WriteFile writes one file under dir, creating parent directories,
// and returns its absolute path. name is slash-separated.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directories for %s: %v", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// SetModTime pins the modification time of a file created by
// [WriteFile] or [WriteTree].
func SetModTime(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("setting mtime of %s: %v", path, err)
	}
}
