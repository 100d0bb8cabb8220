package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a DocumentStore held in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

var _ DocumentStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]string)}
}

func (s *MemoryStore) Read(_ context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	return doc, nil
}

func (s *MemoryStore) Write(_ context.Context, path string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = content
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[path]
	return ok, nil
}
