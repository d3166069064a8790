package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/info-beamer/package-scheduled-player/internal/models"
)

// Storage persists the timeline digest as a single JSON document. Every save
// overwrites the previous set; there is no incremental merge.
type Storage struct {
	path string
	mu   sync.RWMutex
}

func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Storage{path: path}, nil
}

// SaveTimeline overwrites the persisted digest with the given entries.
func (s *Storage) SaveTimeline(entries []models.DigestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal timeline digest: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write timeline digest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace timeline digest: %w", err)
	}
	return nil
}

// LoadTimeline reads the persisted digest back. A missing file yields an
// empty digest, not an error.
func (s *Storage) LoadTimeline() ([]models.DigestEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.DigestEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline digest: %w", err)
	}

	var entries []models.DigestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline digest: %w", err)
	}
	return entries, nil
}
