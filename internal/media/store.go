// Package media stores uploaded film covers and person photos on disk.
// Files are renamed to a random UUID so user-supplied names never reach
// the filesystem.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Upload directories below the media root.
const (
	CoversDir = "covers"
	PhotosDir = "photos"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 10 << 20

// ErrNotImage is returned when the uploaded bytes are not an image.
var ErrNotImage = errors.New("upload is not an image")

// imageTypes are the raster formats accepted for covers and photos.
// SVG is left out since it can carry script and is served same-origin.
var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ErrTooLarge is returned for uploads above MaxUploadBytes.
var ErrTooLarge = errors.New("upload too large")

// Store writes uploads below Root.  Stored paths are relative to Root and
// use forward slashes so they can be appended to the /media/ URL.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at root, creating the directory.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = "media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	return &Store{Root: root}, nil
}

// Save copies an uploaded image into dir and returns its relative path.
func (s *Store) Save(fh *multipart.FileHeader, dir string) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return s.SaveReader(src, dir)
}

// SaveReader is Save for an arbitrary reader.
func (s *Store) SaveReader(r io.Reader, dir string) (string, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), imageTypes...) {
		return "", ErrNotImage
	}

	if err := os.MkdirAll(filepath.Join(s.Root, dir), 0o755); err != nil {
		return "", err
	}
	rel := path.Join(dir, uuid.NewString()+mt.Extension())
	dst, err := os.OpenFile(filepath.Join(s.Root, filepath.FromSlash(rel)), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(r, MaxUploadBytes)))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxUploadBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
		return "", err
	}
	return rel, nil
}

// Remove deletes a previously stored file.  Unknown or empty paths are
// ignored, as are paths escaping the root.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
