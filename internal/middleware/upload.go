package middleware

import (
	"context"
	"net/http"
	"time"
)

// UploadDeadline replaces the server-wide read/write deadlines for multipart
// routes, whose bodies can take far longer than a JSON request. Unlike
// Timeout it does not buffer the response.
func UploadDeadline(maxDuration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			rc := http.NewResponseController(w)
			deadline := time.Now().Add(maxDuration)
			_ = rc.SetReadDeadline(deadline)
			_ = rc.SetWriteDeadline(deadline)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
