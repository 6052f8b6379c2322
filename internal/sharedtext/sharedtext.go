// Package sharedtext persists the single block of text shared between
// everyone logged in.
package sharedtext

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEmpty is returned by Set when the content is blank after trimming.
var ErrEmpty = errors.New("text content is empty")

// Store keeps the shared text in one UTF-8 file. Each Set replaces it.
type Store struct {
	mu   sync.RWMutex
	path string
}

// New prepares a store at path, creating the parent directory.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("text file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create text dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current text, or "" when nothing has been shared.
func (s *Store) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read shared text: %w", err)
	}
	return string(data), nil
}

// Set trims content and replaces the shared text with it.
func (s *Store) Set(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sharedtext-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write shared text: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close shared text: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replace shared text: %w", err)
	}
	return content, nil
}
