// Package uploads resolves contributed media to retrievable URLs before a
// message embeds them.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadBytes caps accepted media; GIFs are the largest allowed kind.
const MaxUploadBytes = 10 << 20

// ErrUnsupportedType indicates the media's content type is not allowed.
var ErrUnsupportedType = errors.New("uploads: unsupported content type")

var extensionByType = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AllowedType reports whether the content type may be uploaded.
func AllowedType(contentType string) bool {
	_, ok := extensionByType[contentType]
	return ok
}

// BlobStore persists named media bytes and returns a retrievable URL.
type BlobStore interface {
	Save(name string, data []byte, contentType string) (string, error)
}

// DiskStore is the local-filesystem blob store used when no cloud storage is
// configured. Saved files are served under /uploads.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the uploads directory exists and returns the store.
func NewDiskStore(dir string) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("uploads: directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the local directory backing the store.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the media under the uploads directory and returns its URL path.
func (s *DiskStore) Save(name string, data []byte, contentType string) (string, error) {
	extension, ok := extensionByType[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	fileName := fmt.Sprintf("%s.%s", name, extension)
	fullPath := filepath.Join(s.dir, "images", fileName)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/images/" + fileName, nil
}
