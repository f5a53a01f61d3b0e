package middleware

import (
	"net/http"

	"backend/pkg/apperror"
	"backend/pkg/logger"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const supportMessage = "Provide the errorId to the support team for further analysis."

// ErrorHandler is the single translation point from errors to HTTP
// responses. Handlers and middleware push errors with c.Error; this runs
// after them, logs the fault once with a correlation id and writes the
// error envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		writeError(c, err)
	}
}

// Recovery converts panics into the same error envelope instead of gin's
// default plain-text 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		writeError(c, apperror.Internal("An unexpected error has occurred."))
	})
}

func writeError(c *gin.Context, err error) {
	if c.Writer.Written() {
		return
	}

	errorID := uuid.NewString()
	status := apperror.StatusOf(err)

	result := response.ErrorResult{
		Source:         c.Request.Method + " " + c.Request.URL.Path,
		ErrorID:        errorID,
		SupportMessage: supportMessage,
		StatusCode:     status,
	}

	if appErr, ok := apperror.As(err); ok {
		if len(appErr.Messages) > 0 {
			result.Messages = appErr.Messages
		} else {
			result.Messages = []string{appErr.Message}
		}
	} else {
		// Untyped faults stay opaque to the caller; details go to the log.
		result.Messages = []string{"An unexpected error has occurred."}
		result.Exception = err.Error()
	}

	logger.L().Errorw("request failed",
		"errorId", errorID,
		"status", status,
		"source", result.Source,
		"error", err.Error(),
	)

	if status < http.StatusInternalServerError {
		// Client faults keep their message but never leak an exception.
		result.Exception = ""
	}

	c.JSON(status, result)
}
