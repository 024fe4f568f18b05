package apierror

import (
	"fmt"
	"net/http"
)

// APIError is the typed error raised by services and handlers. The error
// boundary in the handler package turns it into the failure envelope.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.StatusCode, e.Message, e.Err)
	}

	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithCause attaches an underlying error that is logged but never rendered.
func (e *APIError) WithCause(err error) *APIError {
	e.Err = err
	return e
}

func New(status int, message string, errs ...string) *APIError {
	return &APIError{StatusCode: status, Message: message, Errors: errs}
}

func BadRequest(message string, errs ...string) *APIError {
	return New(http.StatusBadRequest, message, errs...)
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *APIError {
	return New(http.StatusConflict, message)
}

func Internal(message string, cause error) *APIError {
	return New(http.StatusInternalServerError, message).WithCause(cause)
}
