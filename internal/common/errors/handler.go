package errors

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler. Every error that
// escapes a route is rendered as the {"error": {...}} envelope.
func (h *ErrorHandler) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	stdErr := h.normalizeError(err, c.Request().URL.Path)
	status := HTTPStatus(stdErr.Code)

	h.logError(c, stdErr, status)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, stdErr.ToResponse())
}

func (h *ErrorHandler) normalizeError(err error, path string) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}

	if he, ok := err.(*echo.HTTPError); ok {
		message := fmt.Sprintf("%v", he.Message)
		switch he.Code {
		case http.StatusNotFound:
			return NewNotFoundError(path)
		case http.StatusMethodNotAllowed:
			return &StandardError{Code: ErrCodeMethodNotAllowed, Message: message, Timestamp: time.Now().UTC()}
		case http.StatusTooManyRequests:
			return &StandardError{Code: ErrCodeRateLimited, Message: message, Retryable: IsRetryable(ErrCodeRateLimited), Timestamp: time.Now().UTC()}
		}
		if he.Code >= 400 && he.Code < 500 {
			return NewBadRequestError(message, nil)
		}
		return NewInternalError(he)
	}

	return NewInternalError(err)
}

func (h *ErrorHandler) logError(c echo.Context, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"requestId":     c.Response().Header().Get(echo.HeaderXRequestID),
		"method":        c.Request().Method,
		"path":          c.Request().URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	if status >= http.StatusInternalServerError {
		fields["details"] = stdErr.Details
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
