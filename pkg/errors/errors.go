package errors

import "errors"

// Codes shared by the orchestration domain and the HTTP layer.
const (
	CodeInvalidInput      = "invalid_input"
	CodeNoTarget          = "no_target"
	CodeExtractionFailed  = "extraction_failed"
	CodeEmptyContent      = "empty_content"
	CodeTransportFailure  = "transport_failure"
	CodeStreamUnavailable = "stream_unavailable"
	CodeInternal          = "internal"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Message returns the human readable part of err without the wrapped cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Message == "" && appErr.Err != nil {
		return Message(appErr.Err)
	}
	return appErr.Message
}
