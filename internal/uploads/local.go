package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
)

// LocalStore keeps files under a directory on disk.
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore creates root if needed. urlPrefix is the path the directory
// is served under.
func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, urlPrefix: urlPrefix}, nil
}

// Root returns the directory files are written to.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(_ context.Context, prefix, filename string, r io.Reader) (string, error) {
	key, err := NewKey(prefix, filename)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = errTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		if errors.Is(err, errTooLarge) {
			return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Arquivo muito grande.")
		}
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}

	logger.Get().Debugw("upload stored", "backend", "local", "key", key, "bytes", n)
	return key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}
	return nil
}

func (s *LocalStore) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return s.urlPrefix + "/" + key, nil
}

var errTooLarge = errors.New("file exceeds upload limit")
