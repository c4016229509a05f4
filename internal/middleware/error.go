package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
)

// ErrorHandler turns errors attached to the gin context into the JSON error
// envelope. Bind errors become INVALID_INPUT; anything that is not an
// AppError is logged and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		requestID, _ := c.Get(requestIDKey)

		var appErr *apperrors.AppError
		switch {
		case errors.As(last.Err, &appErr):
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
					"request_id", requestID,
				)
			}
		case last.IsType(gin.ErrorTypeBind):
			appErr = apperrors.WithMessage(apperrors.ErrInvalidInput, last.Err.Error())
		default:
			logger.Get().Errorw("unexpected error",
				"error", last.Err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", requestID,
			)
			appErr = apperrors.ErrInternalServer
		}

		abortWithError(c, appErr)
	}
}
