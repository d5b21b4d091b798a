package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func compose(accountID, key string) string {
	return accountID + ":" + key
}

func (s *MemoryStore) Get(_ context.Context, accountID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[compose(accountID, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, accountID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[compose(accountID, key)] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, accountID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, compose(accountID, key))
	return nil
}
