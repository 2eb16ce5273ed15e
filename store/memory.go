package store

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Handle][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Handle][]byte)}
}

// Put implements the Store interface.
func (s *MemoryStore) Put(ctx context.Context, data []byte) (Handle, error) {
	h := ComputeHandle(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[h]; !ok {
		s.data[h] = append([]byte(nil), data...)
	}
	return h, nil
}

// Get implements the Store interface.
func (s *MemoryStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[h]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete implements the Store interface.
func (s *MemoryStore) Delete(ctx context.Context, h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[h]; !ok {
		return ErrNotFound
	}
	delete(s.data, h)
	return nil
}

// Exists implements the Store interface.
func (s *MemoryStore) Exists(ctx context.Context, h Handle) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[h]
	return ok, nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close implements the Store interface.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[Handle][]byte)
	return nil
}
