package storage

import (
	"context"
	"sync"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// MemoryStore is a Store backed by maps.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]LayoutDoc
	atlases map[string]AtlasDoc
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		layouts: make(map[string]LayoutDoc),
		atlases: make(map[string]AtlasDoc),
	}
}

func (s *MemoryStore) SaveLayout(_ context.Context, doc *LayoutDoc) error {
	stamp(&doc.ID, &doc.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) GetLayout(_ context.Context, id string) (*LayoutDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.layouts[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
	}
	return &doc, nil
}

func (s *MemoryStore) SaveAtlas(_ context.Context, doc *AtlasDoc) error {
	stamp(&doc.ID, &doc.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atlases[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) GetAtlas(_ context.Context, id string) (*AtlasDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.atlases[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "atlas %s not found", id)
	}
	return &doc, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
