package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/web-summarizer/pkg/errors"
)

// HTTPError is the transport view of a failure: status, stable code and client message.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if status, code, ok := statusForCode(appErr.Code); ok {
			return &HTTPError{Status: status, Code: code, Message: apperrors.Message(err), Err: err}
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// statusForCode maps client-facing domain codes. Anything else stays an opaque 500.
func statusForCode(code string) (int, string, bool) {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest, "invalid_request", true
	case apperrors.CodeNoTarget:
		return http.StatusNotFound, "target_not_found", true
	}
	return 0, "", false
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
