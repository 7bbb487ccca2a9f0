// Package persist stores game snapshots on disk and records finished games
// with the backend exactly once.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/neonmatrix/neonmatrix/internal/game"
)

// SnapshotStore keeps an append-only list of game snapshots in a JSON file.
// Snapshots are never deduplicated or pruned; saving the same board twice
// yields two entries.
type SnapshotStore struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotStore creates a store backed by the given file path. The file
// is created on first save.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save appends a snapshot to the file.
func (s *SnapshotStore) Save(snap game.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.load()
	if err != nil {
		return err
	}
	snaps = append(snaps, snap)
	return s.write(snaps)
}

// List returns all saved snapshots in save order. A missing file is an
// empty list, not an error.
func (s *SnapshotStore) List() ([]game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the snapshot with the given id, or nil if none matches. When
// duplicate ids exist the most recently saved one wins.
func (s *SnapshotStore) Get(id string) (*game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i].ID == id {
			return &snaps[i], nil
		}
	}
	return nil, nil
}

func (s *SnapshotStore) load() ([]game.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	var snaps []game.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("failed to parse snapshots: %w", err)
	}
	return snaps, nil
}

func (s *SnapshotStore) write(snaps []game.Snapshot) error {
	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshots: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// Write to a temp file and rename so a crash mid-write cannot corrupt
	// the existing list.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
