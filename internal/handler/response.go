package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"go-vidtube/internal/model"
	"go-vidtube/pkg/apierror"
)

const maxJSONBody = 1 << 20

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle is the error boundary: every error a handler returns is rendered as
// the failure envelope.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)

	if apiErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", apiErr.StatusCode,
			"error", err,
		)
	} else if apiErr.Err != nil {
		slog.Warn("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", apiErr.StatusCode,
			"error", apiErr.Err,
		)
	}

	errs := apiErr.Errors
	if errs == nil {
		errs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     errs,
	})
}

func toAPIError(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return apierror.New(http.StatusRequestEntityTooLarge, "Request body exceeds MAX_UPLOAD_SIZE")
	case errors.Is(err, model.ErrUserNotFound):
		return apierror.NotFound("User does not exist")
	case errors.Is(err, model.ErrVideoNotFound):
		return apierror.NotFound("Video not found")
	case errors.Is(err, model.ErrDuplicateUser):
		return apierror.Conflict("User with email or username already exists")
	case errors.Is(err, model.ErrUploadFailed):
		return apierror.BadRequest("Upload failed")
	default:
		return apierror.Internal("Internal server error", err)
	}
}

// decodeJSON treats an empty body as an empty object so that missing fields
// are reported by validation rather than as a parse error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return apierror.BadRequest("Invalid JSON body", err.Error())
	}
	return nil
}
