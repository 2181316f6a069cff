package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "avrexpense/internal/errors"
	"avrexpense/internal/logger"
)

// ErrorHandler renders errors attached with c.Error as the API's error body.
// Handlers that already wrote a response are left alone. Store failures keep
// their 503 so clients know to retry; anything untyped becomes a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Named("http")

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error",
				"request_id", c.GetString(requestIDKey),
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error",
				"request_id", c.GetString(requestIDKey),
				"code", appErr.Code,
				"kind", apperrors.Kind(appErr),
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		abortWithError(c, appErr)
	}
}

// NoRoute answers unknown paths with the standard error body.
func NoRoute(c *gin.Context) {
	abortWithError(c, apperrors.ErrNotFound)
}
