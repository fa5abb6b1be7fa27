// Package local stores uploaded documents on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jobportal-backend/internal/shared/storage/object"
)

var errInvalidKey = errors.New("invalid storage key")

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) object.ObjectStore {
	return &Store{baseDir: baseDir}
}

// Save writes the reader under the owner's namespace and reports the sniffed content type.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (string, int64, string, error) {
	key, err := object.NewKey(ownerID, fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("storage key: %w", err)
	}
	mimeType, body, err := object.Sniff(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read sniff: %w", err)
	}
	size, err := s.SaveWithKey(ctx, key, mimeType, body)
	if err != nil {
		return "", 0, "", err
	}
	return key, size, mimeType, nil
}

// SaveWithKey writes r to a temp file beside the target and renames it into
// place, so readers never observe a partial document.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, _ string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	target, err := s.resolve(storageKey)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), target)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("write %s: %w", storageKey, err)
	}
	return n, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", storageKey, object.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", errInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}
