package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS reads and writes files on the local filesystem
type LocalFS struct{}

// NewLocalFS creates a LocalFS
func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

// FileExists reports whether path names an existing regular file (or a
// symlink to one). Directories are not files.
func (l *LocalFS) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// ReadFile reads the whole file into memory
func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// EnsureDir creates dir and any missing parents
func (l *LocalFS) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to dir/name, replacing any existing file, and returns
// the written path
func (l *LocalFS) WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
