package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one file per blob, sharded by the first byte of the handle.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory of s.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(h Handle) string {
	name := h.String()
	return filepath.Join(s.dir, name[:2], name)
}

// Put implements the Store interface.
// The blob is written to a temporary file and renamed into place.
func (s *FileStore) Put(ctx context.Context, data []byte) (Handle, error) {
	h := ComputeHandle(data)
	path := s.path(h)

	if _, err := os.Stat(path); err == nil {
		return h, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return h, fmt.Errorf("create shard dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return h, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return h, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return h, fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return h, fmt.Errorf("rename temp file: %w", err)
	}
	return h, nil
}

// Get implements the Store interface.
func (s *FileStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	data, err := os.ReadFile(s.path(h))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete implements the Store interface.
func (s *FileStore) Delete(ctx context.Context, h Handle) error {
	err := os.Remove(s.path(h))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// Exists implements the Store interface.
func (s *FileStore) Exists(ctx context.Context, h Handle) (bool, error) {
	_, err := os.Stat(s.path(h))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("stat blob: %w", err)
}

// Close implements the Store interface.
func (s *FileStore) Close() error {
	return nil
}
