// Package filestore persists uploaded image binaries on local disk.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes binaries into a single directory and addresses them
// by the /uploads/<name> paths embedded in image records.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store for it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save streams the binary to disk under a random name that keeps the
// original extension, returning the public /uploads path for it.
func (s *DiskStore) Save(r io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + sanitizeExt(originalName)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + name, nil
}

// Remove deletes the binary addressed by the given /uploads path.
// A missing file is not an error: the record is the source of truth.
func (s *DiskStore) Remove(imageURL string) error {
	name := filepath.Base(imageURL)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid image url %q", imageURL)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg":
		return ext
	}
	return ""
}
