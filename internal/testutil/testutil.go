// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lherron/gxcopy/internal/journal"
)

// TempJournal opens a migrated journal in a temporary directory
func TempJournal(t *testing.T) (*journal.Journal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Failed to create test journal: %v", err)
	}

	t.Cleanup(func() {
		j.Close()
	})

	return j, path
}

// WriteFile writes content to a file in dir and returns its path
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}
