package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"smokebuddy/internal/types"
)

// FileStore keeps the record as a pretty-printed JSON file. Save writes a
// temp file in the same directory and renames it over the target, so readers
// see either the old or the new document.
type FileStore struct {
	path string
}

// Compile-time assertion that FileStore implements types.CounterRepository.
var _ types.CounterRepository = (*FileStore)(nil)

// NewFileStore creates a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// EnsureDir creates the state directory so the health check passes before
// the first Save.
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return types.NewStorageError("failed to create state directory", err)
	}
	return nil
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record, creating the default record when the file does not
// exist yet.
func (s *FileStore) Load(ctx context.Context, defaultDate string) (*types.CounterRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		rec := types.NewCounterRecord(defaultDate)
		if err := s.Save(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err != nil {
		return nil, types.NewStorageError(fmt.Sprintf("failed to read %s", s.path), err)
	}
	return decodeRecord(data, s.path)
}

// Save atomically replaces the state file.
func (s *FileStore) Save(_ context.Context, rec *types.CounterRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewStorageError(fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return types.NewStorageError("failed to create temp state file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return types.NewStorageError("failed to write temp state file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return types.NewStorageError("failed to sync temp state file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return types.NewStorageError("failed to close temp state file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return types.NewStorageError(fmt.Sprintf("failed to replace %s", s.path), err)
	}
	return nil
}

// Name identifies the store in health checks.
func (s *FileStore) Name() string { return "state_file" }

// Check verifies that the state directory is reachable.
func (s *FileStore) Check(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}
