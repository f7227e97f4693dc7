package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryStore returns a Store kept entirely in memory. It backs tests and
// profiles without a database; values still go through JSON so behavior
// matches the gorm store.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (s *memoryStore) Get(ctx context.Context, key string, out any) error {
	s.mu.Lock()
	raw, ok := s.entries[key]
	s.mu.Unlock()

	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

func (s *memoryStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
