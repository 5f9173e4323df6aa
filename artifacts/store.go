// Package artifacts persists and restores the trained bundle: the model, the
// scaler, the location encoder and the ordered feature names.
package artifacts

import (
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Store is a flat key/blob store. Keys are artifact names without extension.
type Store interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
	Exists(key string) (bool, error)
	// Location describes where blobs live, for error messages and logs.
	Location() string
}

// FileStore keeps each blob in <Dir>/<key>.json.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created on
// the first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Location implements Store.
func (s *FileStore) Location() string {
	return s.Dir
}

// Put writes data to a temporary file in the same directory and renames it
// over the target so readers never see a partially written blob.
func (s *FileStore) Put(key string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create artifacts dir %s", s.Dir)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", key)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to sync %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", key)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return errors.Wrapf(err, "failed to move %s into place", key)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact %s", key)
	}
	return data, nil
}

// Exists implements Store. A directory in place of the blob is an error.
func (s *FileStore) Exists(key string) (bool, error) {
	fi, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat artifact %s", key)
	}
	if fi.IsDir() {
		return false, errors.Newf("artifact %s is a directory", s.path(key))
	}
	return true, nil
}
