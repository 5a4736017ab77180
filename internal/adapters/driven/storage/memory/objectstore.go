package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func cleanKey(p string) string {
	return strings.TrimPrefix(p, "/")
}

// Put writes an object.
func (s *ObjectStore) Put(_ context.Context, path string, data []byte, contentType string) error {
	key := cleanKey(path)
	if key == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return nil
}

// Get reads an object.
func (s *ObjectStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[cleanKey(path)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether an object is present.
func (s *ObjectStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[cleanKey(path)]
	return ok, nil
}

// Copy duplicates src to dst.
func (s *ObjectStore) Copy(_ context.Context, src, dst string) error {
	dstKey := cleanKey(dst)
	if dstKey == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[cleanKey(src)]
	if !ok {
		return domain.ErrNotFound
	}
	s.objects[dstKey] = append([]byte(nil), data...)
	s.types[dstKey] = s.types[cleanKey(src)]
	return nil
}

// Delete removes an object.
func (s *ObjectStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, cleanKey(path))
	delete(s.types, cleanKey(path))
	return nil
}

// Paths returns every stored path, sorted.
func (s *ObjectStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
