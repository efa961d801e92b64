package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/logger"
)

// ErrorHandler renders the last error a handler recorded with c.Error as
// {"error":{"code","message"}}. Handlers never write error bodies themselves.
// An AppError keeps its status and code; anything else is logged and answered
// with INTERNAL_ERROR so driver or library text never reaches the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := resolveError(c, c.Errors.Last().Err)
		c.JSON(appErr.StatusCode, errorBody(appErr))
	}
}

// resolveError maps err to the AppError sent to the client, logging the
// internal cause under the request's correlation id.
func resolveError(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("request failed",
				"request_id", RequestID(c),
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr
	}

	logger.Get().Errorw("unexpected error",
		"request_id", RequestID(c),
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer
}

func errorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	}
}

// errorCode names the error recorded on c for request logs.
func errorCode(c *gin.Context) string {
	last := c.Errors.Last()
	if last == nil {
		return ""
	}
	var appErr *apperrors.AppError
	if errors.As(last.Err, &appErr) {
		return appErr.Code
	}
	return apperrors.ErrInternalServer.Code
}
