package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each key as a JSON document under a data directory.
// Writes go through a temp file and an atomic rename so a crash mid-save never
// leaves a half-written document behind.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore constructs a store rooted at dir, creating it when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("kvstore: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load implements the Store interface.
func (s *FileStore) Load(_ context.Context, key string, dest any) (bool, error) {
	if !ValidKey(key) {
		return false, ErrInvalidKey
	}

	s.mu.Lock()
	raw, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("kvstore: read %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Malformed stored data is treated as absent; the caller falls back
		// to its empty default.
		return false, nil
	}
	return true, nil
}

// Save implements the Store interface.
func (s *FileStore) Save(_ context.Context, key string, value any) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kvstore: temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: replace %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
