package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cardkey/cardkey/internal/model"
)

// Store persists the full key collection as a single JSON document. Every
// Save rewrites the whole document; there is no locking, so only one
// operator should mutate a store at a time.
type Store struct {
	path string

	// in-memory document, used when path is empty
	mem []byte
}

// NewStore creates a store backed by <dataDir>/keys.json. Pass empty string
// for an in-memory store. The data directory is created on first Save.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return &Store{}, nil
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	return &Store{path: filepath.Join(abs, StoreFileName)}, nil
}

// Path returns the store file location, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Load reads every record in storage order. A store that was never written
// returns ErrStoreMissing; an unparsable one returns ErrStoreCorrupt.
func (s *Store) Load(ctx context.Context) ([]model.KeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	var records []model.KeyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	if records == nil {
		records = []model.KeyRecord{}
	}
	return records, nil
}

// Save replaces the stored collection with records.
func (s *Store) Save(ctx context.Context, records []model.KeyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.KeyRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keys: %w", err)
	}
	data = append(data, '\n')

	if s.path == "" {
		s.mem = data
		return nil
	}
	return writeFileAtomic(s.path, data)
}

func (s *Store) read() ([]byte, error) {
	if s.path == "" {
		if s.mem == nil {
			return nil, ErrStoreMissing
		}
		return s.mem, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w (%s)", ErrStoreMissing, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place so a failed write never truncates the existing store.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".keys-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write keys: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod keys: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace keys: %w", err)
	}
	return nil
}
