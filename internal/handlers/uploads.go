package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/uploads"
)

// saveUpload stores the multipart file in field, if any. An empty key with
// a nil error means the request carried no file.
func saveUpload(c *gin.Context, store uploads.Store, field, prefix string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if header.Size > uploads.MaxFileSize {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Arquivo muito grande.")
	}

	f, err := header.Open()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	defer f.Close()

	return store.Save(c.Request.Context(), prefix, header.Filename, f)
}

// removeUpload deletes key, logging rather than failing the request.
func removeUpload(c *gin.Context, store uploads.Store, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), key); err != nil {
		logger.Get().Warnw("failed to delete upload", "key", key, "error", err)
	}
}
