package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

const legacyErrorsKey = "legacyErrors"

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent error responses. With legacy enabled every failure
// is reported as a 500 with a plain-text message, which is what older
// clients expect.
func ErrorHandler(legacy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(legacyErrorsKey, legacy)
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError renders err. AppErrors are returned with their status, code and
// message; unexpected errors are logged and reported as a generic internal
// error to avoid leaking details.
func WriteError(c *gin.Context, err error) {
	appErr := apperrors.ErrInternalServer

	var target *apperrors.AppError
	if errors.As(err, &target) {
		appErr = target
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
	} else {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}

	if c.GetBool(legacyErrorsKey) {
		c.String(http.StatusInternalServerError, appErr.Message)
		return
	}

	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
