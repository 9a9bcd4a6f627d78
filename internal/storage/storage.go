package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a reference does not resolve to a stored object.
var ErrNotFound = errors.New("object not found")

// ObjectStore stores opaque byte buffers under stable references. The
// lifecycle services only rely on put/get semantics; validation of size and
// MIME type happens at the handler boundary before anything reaches here.
type ObjectStore interface {
	Put(data []byte, contentType string) (string, error)
	Get(ref string) ([]byte, string, error)
	Delete(ref string) error
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

var contentTypeByExt = func() map[string]string {
	m := make(map[string]string, len(extByContentType))
	for ct, ext := range extByContentType {
		m[ext] = ct
	}
	return m
}()

// DiskStore is an ObjectStore backed by a local directory. References are
// random keys, never derived from user input.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the backing directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Put(data []byte, contentType string) (string, error) {
	ext, ok := extByContentType[contentType]
	if !ok {
		ext = ".bin"
	}

	ref := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return ref, nil
}

func (s *DiskStore) Get(ref string) ([]byte, string, error) {
	// refs are generated server-side; reject anything path-like anyway
	if ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return nil, "", ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to read object: %w", err)
	}

	contentType, ok := contentTypeByExt[filepath.Ext(ref)]
	if !ok {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func (s *DiskStore) Delete(ref string) error {
	if ref != filepath.Base(ref) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
