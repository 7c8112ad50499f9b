// Package store persists run artifacts as opaque blobs under logical keys.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Logical blob keys used by the pipeline.
const (
	KeySolution          = "solution"
	KeyCriticalFeedback  = "critical-feedback"
	KeyFavorableFeedback = "favorable-feedback"
	KeyReport            = "report"
)

// Store is a write-only blob store. Writes are best-effort from the loop's
// point of view: callers report failures but never abort on them.
type Store interface {
	Write(key, content string) error
}

// DirStore writes blobs as files under a run-scoped directory.
type DirStore struct {
	dir string
}

// Compile-time interface check
var _ Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at dir. The directory is created on
// first write, not here, so constructing a store is always safe.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the store's root directory.
func (s *DirStore) Dir() string {
	return s.dir
}

// Write persists the content under the key's filename.
func (s *DirStore) Write(key, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filename(key))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// filename maps a logical key to its on-disk name. The solution blob is
// Python source; everything else is plain text.
func filename(key string) string {
	if key == KeySolution {
		return "solution.py"
	}
	return key + ".txt"
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu    sync.Mutex
	blobs map[string]string
}

// Compile-time interface check
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string]string)}
}

// Write records the blob.
func (s *MemStore) Write(key, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = content
	return nil
}

// Get returns the blob for key, if present.
func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.blobs[key]
	return v, ok
}

// Len returns the number of stored blobs.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
