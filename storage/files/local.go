// Package files stores uploaded files on the local filesystem.
package files

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidName = errors.New("invalid file name")

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &LocalStore{dir: dir}, nil
}

// path resolves name inside the store, rejecting anything that could escape it.
func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r to a new uniquely named file and returns its name.
func (s *LocalStore) Save(r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + strings.ToLower(ext)
	fp, err := s.path(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(fp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "closing file")
	}
	return name, nil
}

func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	fp, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(fp)
}

func (s *LocalStore) Remove(name string) error {
	fp, err := s.path(name)
	if err != nil {
		return err
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
