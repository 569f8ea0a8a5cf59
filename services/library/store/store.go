package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rhythmerc/steamshelf/services/library/models"
)

// Store persists the whole game collection as a single JSON document. Saves
// are whole-collection and atomic from the caller's perspective; loads treat
// an absent or corrupt file as an empty library.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a store backed by the given file path
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Save serializes the entire collection to the backing file. The write goes
// through a temp file and rename so a crash mid-write never leaves a partial
// document behind.
func (s *Store) Save(games []models.Game) error {
	if games == nil {
		games = []models.Game{}
	}

	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode library: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace metadata file: %w", err)
	}

	return nil
}

// Load reads the persisted collection. An absent or unparsable file yields an
// empty collection; parse errors are never propagated.
func (s *Store) Load() []models.Game {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read metadata file", "path", s.path, "error", err)
		}
		return []models.Game{}
	}

	var games []models.Game
	if err := json.Unmarshal(data, &games); err != nil {
		s.logger.Warn("metadata file is corrupt, starting empty", "path", s.path, "error", err)
		return []models.Game{}
	}
	if games == nil {
		return []models.Game{}
	}

	return games
}

// Delete removes the backing file. Removing an already absent file is a no-op.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata file: %w", err)
	}
	return nil
}
