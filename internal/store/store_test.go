package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirStore_WriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run-1")
	s := NewDirStore(dir)

	if err := s.Write(KeySolution, "print('hi')"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "solution.py"))
	if err != nil {
		t.Fatalf("failed to read solution: %v", err)
	}
	if string(data) != "print('hi')" {
		t.Errorf("expected %q, got %q", "print('hi')", string(data))
	}
}

func TestDirStore_FilenameMapping(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: KeySolution, want: "solution.py"},
		{key: KeyCriticalFeedback, want: "critical-feedback.txt"},
		{key: KeyFavorableFeedback, want: "favorable-feedback.txt"},
		{key: KeyReport, want: "report.txt"},
	}

	dir := t.TempDir()
	s := NewDirStore(dir)

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := s.Write(tt.key, "content"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.want)); err != nil {
				t.Errorf("expected file %s to exist: %v", tt.want, err)
			}
		})
	}
}

func TestDirStore_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	s := NewDirStore(dir)

	if err := s.Write(KeyReport, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Write(KeyReport, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", string(data))
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	if err := s.Write(KeySolution, "code"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := s.Get(KeySolution)
	if !ok {
		t.Fatal("expected solution blob to exist")
	}
	if got != "code" {
		t.Errorf("expected %q, got %q", "code", got)
	}

	if _, ok := s.Get(KeyReport); ok {
		t.Error("expected missing key to report absence")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 blob, got %d", s.Len())
	}
}
