package repository

import (
	"context"
	"sync"
)

// MemorySettingsStore keeps the flat settings map in memory.
type MemorySettingsStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{entries: make(map[string]string)}
}

func (s *MemorySettingsStore) Init(ctx context.Context) error {
	return nil
}

func (s *MemorySettingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key], nil
}

func (s *MemorySettingsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}
