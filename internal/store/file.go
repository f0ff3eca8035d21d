package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each key as a JSON file under a data directory.
// Used when no Redis is available (single-host deployments, local dev).
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path sanitizes the key for use as a filename.
func (s *FileStore) path(key string) string {
	safe := strings.ReplaceAll(key, ":", "_")
	safe = filepath.Base(safe)
	return filepath.Join(s.dir, safe+".json")
}

// Get reads and unmarshals the JSON file for key.
func (s *FileStore) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Set writes value as an indented JSON file for key.
func (s *FileStore) Set(ctx context.Context, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Create(s.path(key))
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return nil
}
