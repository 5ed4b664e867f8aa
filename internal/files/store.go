// Package files provides disk storage for attachment bytes. Metadata
// lives in the database; this store only holds file contents, keyed by
// (kind, id, filename).
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	ferrors "github.com/frackdev/frack/internal/errors"
)

// KindTicket is the store kind for ticket attachments.
const KindTicket = "ticket"

// DiskStore stores files under root/kind/id/filename.
type DiskStore struct {
	root string
}

// NewDiskStore creates a DiskStore rooted at the given directory.
func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

// Root returns the store's root directory.
func (s *DiskStore) Root() string {
	return s.root
}

// Put saves a file and returns the number of bytes written. An existing
// (kind, id, filename) entry is never overwritten; attempting to is a
// Collision.
func (s *DiskStore) Put(kind, id, filename string, r io.Reader) (int64, error) {
	path, err := s.path(kind, id, filename)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create attachment directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return 0, ferrors.Collision("file %q already exists for %s %s", filename, kind, id)
		}
		return 0, fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write attachment file: %w", err)
	}
	return size, nil
}

// Open opens a stored file for reading.
func (s *DiskStore) Open(kind, id, filename string) (*os.File, error) {
	path, err := s.path(kind, id, filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFound("no file %q for %s %s", filename, kind, id)
		}
		return nil, fmt.Errorf("failed to open attachment file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *DiskStore) Remove(kind, id, filename string) error {
	path, err := s.path(kind, id, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove attachment file: %w", err)
	}
	return nil
}

// path validates the components and returns the on-disk location. Each
// component must be a bare name; anything that would escape the store
// root is rejected.
func (s *DiskStore) path(kind, id, filename string) (string, error) {
	for _, part := range []string{kind, id, filename} {
		if part == "" || part != filepath.Base(part) || part == "." || part == ".." {
			return "", ferrors.Validation("invalid file store path component %q", part)
		}
	}
	return filepath.Join(s.root, kind, id, filename), nil
}
