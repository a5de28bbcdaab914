package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File is a [Store] backed by a single JSON file, the durable mirror for a
// single-host console session. The file is created with 0600 permissions:
// it holds live bearer credentials.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path. The file and its parent
// directory are created lazily on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get implements [Store].
func (s *File) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements [Store].
func (s *File) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(m)
}

// Delete implements [Store].
func (s *File) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}

// Clear implements [Store]. The mirror file is removed entirely.
func (s *File) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: clear mirror: %w", err)
	}
	return nil
}

func (s *File) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read mirror: %w", err)
	}

	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		// A corrupt mirror reads as empty; the session layer fails closed on
		// the missing profile.
		return map[string]string{}, nil
	}
	return m, nil
}

func (s *File) save(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("storage: create mirror dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("storage: write mirror: %w", err)
	}
	return nil
}
