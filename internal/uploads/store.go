// Package uploads stores account icons and profile photos on the local
// filesystem or in an S3-compatible bucket.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"carteira/internal/config"
	apperrors "carteira/internal/errors"
	"carteira/internal/uuid"
)

// Key prefixes.
const (
	PrefixAccountIcons  = "contas"
	PrefixProfilePhotos = "perfil"
)

// MaxFileSize is the largest accepted upload in bytes.
const MaxFileSize = 5 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Store persists uploaded files under generated keys.
type Store interface {
	// Save writes r under prefix and returns the generated key. filename is
	// only used for its extension.
	Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	// Delete removes the object stored at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// URL returns a location the browser can fetch key from.
	URL(ctx context.Context, key string) (string, error)
}

// New builds the Store selected by cfg.UploadBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.UploadBackendLocal, "":
		return NewLocalStore(cfg.UploadDir, "/media")
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}

// NewKey returns a fresh object key under prefix keeping filename's
// extension. Unsupported extensions are rejected.
func NewKey(prefix, filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Formato de imagem não suportado.")
	}
	return path.Join(prefix, uuid.New()+ext), nil
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
