package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole namespace in a single JSON file.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]json.RawMessage
}

// NewFileStore loads filePath, or starts empty if the file does not exist.
// Returns an error only on unexpected I/O or decode failures.
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{filePath: filePath, values: map[string]json.RawMessage{}}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	if s.values == nil {
		s.values = map[string]json.RawMessage{}
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if value != nil && !json.Valid(value) {
		return errors.New("store: value is not valid JSON")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]json.RawMessage, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	if value == nil {
		delete(next, key)
	} else {
		cp := make([]byte, len(value))
		copy(cp, value)
		next[key] = cp
	}
	if err := s.writeAtomic(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) Close() error { return nil }

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold s.mu.
func (s *FileStore) writeAtomic(values map[string]json.RawMessage) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}
