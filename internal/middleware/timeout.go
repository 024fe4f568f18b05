package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds JSON routes. The body of a timed out request is the failure
// envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"statusCode":503,"message":"Request timed out","success":false,"errors":[]}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
