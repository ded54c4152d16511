// Package storage keeps refund photos: a local directory the transport
// downloads into, and an optional S3-compatible archive.
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/filex"
)

// PhotoStore maps photo filenames to paths inside one directory.
type PhotoStore struct {
	dir string
}

func NewPhotoStore(dir string) (*PhotoStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("photo dir: %w", err)
	}
	return &PhotoStore{dir: abs}, nil
}

// PhotoFilename derives the stored name of a refund photo. It embeds the user
// id, so two users submitting in the same second never collide.
func PhotoFilename(userID int64, at time.Time) string {
	return fmt.Sprintf("refund_%d_%d.jpg", userID, at.Unix())
}

func (s *PhotoStore) Dir() string {
	return s.dir
}

func (s *PhotoStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Remove deletes a stored photo; a missing file is not an error.
func (s *PhotoStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	return filex.RemoveIfExists(s.Path(name))
}
