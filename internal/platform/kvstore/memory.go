package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore provides an in-memory implementation useful for testing and local development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

// NewMemoryStore constructs an empty memory-backed store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Seed stores a raw JSON payload under key, bypassing marshalling. Tests use it
// to stage pre-existing or deliberately corrupt state.
func (s *MemoryStore) Seed(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = append([]byte(nil), raw...)
}

// Load implements the Store interface.
func (s *MemoryStore) Load(_ context.Context, key string, dest any) (bool, error) {
	if !ValidKey(key) {
		return false, ErrInvalidKey
	}

	s.mu.Lock()
	raw, ok := s.records[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Malformed stored data is treated as absent.
		return false, nil
	}
	return true, nil
}

// Save implements the Store interface.
func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = raw
	return nil
}
