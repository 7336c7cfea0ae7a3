package memory

import (
	"context"
	"strings"
	"sync"

	"studio/internal/domain"
)

// NopStore remembers nothing.
type NopStore struct{}

func (NopStore) Load(_ context.Context, brandID string) (domain.MemorySnapshot, error) {
	return domain.MemorySnapshot{BrandID: brandID}, nil
}

func (NopStore) Record(context.Context, string, domain.MemoryEntry) error { return nil }

// LocalStore keeps memory in process. It backs the CLI and tests.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string][]domain.MemoryEntry // newest first
}

func NewLocalStore() *LocalStore {
	return &LocalStore{entries: make(map[string][]domain.MemoryEntry)}
}

func (s *LocalStore) Load(_ context.Context, brandID string) (domain.MemorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[brandID]
	return snapshotFrom(brandID, list, len(list)), nil
}

func (s *LocalStore) Record(_ context.Context, brandID string, entry domain.MemoryEntry) error {
	if strings.TrimSpace(brandID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]domain.MemoryEntry{entry}, s.entries[brandID]...)
	if len(list) > RecentEntries {
		list = list[:RecentEntries]
	}
	s.entries[brandID] = list
	return nil
}

var (
	_ domain.MemoryStore = NopStore{}
	_ domain.MemoryStore = (*LocalStore)(nil)
)
