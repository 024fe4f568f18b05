package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusBadRequest, BadRequest("bad").StatusCode)
	require.Equal(t, http.StatusUnauthorized, Unauthorized("nope").StatusCode)
	require.Equal(t, http.StatusNotFound, NotFound("missing").StatusCode)
	require.Equal(t, http.StatusConflict, Conflict("taken").StatusCode)
	require.Equal(t, http.StatusInternalServerError, Internal("boom", nil).StatusCode)
}

func TestInternalWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := Internal("failed to save user", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection reset")

	var apiErr *APIError
	require.True(t, errors.As(error(err), &apiErr))
	require.Equal(t, "failed to save user", apiErr.Message)
}

func TestBadRequestKeepsFieldErrors(t *testing.T) {
	t.Parallel()

	err := BadRequest("All fields are required", "email", "password")
	require.Equal(t, []string{"email", "password"}, err.Errors)
	require.Equal(t, "400 All fields are required", err.Error())
}
