// Package store persists tracked feed records as a single JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lepinkainen/feedtrack/internal/tracker"
	"github.com/lepinkainen/feedtrack/pkg/filesystem"
)

// DefaultFile is the data file used when no path is configured
const DefaultFile = "Data.json"

// ErrEmpty is returned by Load when the store holds no feeds.
var ErrEmpty = errors.New("there are no feeds")

// Store reads and rewrites the whole record list on every operation.
// There is no locking: concurrent writers race and the last one wins.
type Store struct {
	path string
}

// New returns a store backed by the file at path
func New(path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{path: path}
}

// Path returns the data file path
func (s *Store) Path() string {
	return s.path
}

// Ensure creates an empty data file if none exists yet
func (s *Store) Ensure() error {
	return filesystem.EnsureFile(s.path)
}

// Load returns every record in insertion order. A missing file, an empty file
// and an empty array all yield ErrEmpty.
func (s *Store) Load() ([]tracker.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var records []tracker.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	slog.Debug("Loaded records", "path", s.path, "count", len(records))
	return records, nil
}

// Save overwrites the data file with records as 4-space indented JSON
func (s *Store) Save(records []tracker.Record) error {
	if records == nil {
		records = []tracker.Record{}
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}

	if err := filesystem.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}

	slog.Debug("Saved records", "path", s.path, "count", len(records))
	return nil
}

// Encode renders records the way they are stored on disk
func Encode(records []tracker.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return buf.Bytes(), nil
}
