package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-vidtube/internal/model"
	"go-vidtube/pkg/apierror"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type accessValidator interface {
	ValidateAccess(token string) (*model.AuthClaims, error)
}

type userLoader interface {
	Current(ctx context.Context, userID string) (model.User, error)
}

type contextKey string

const currentUserContextKey contextKey = "current_user"

type AuthMiddleware struct {
	validator accessValidator
	users     userLoader
}

func NewAuthMiddleware(validator accessValidator, users userLoader) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, users: users}
}

// RequireAuth accepts the access token from the accessToken cookie or an
// Authorization bearer header and attaches the account to the request.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFrom(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized request")
			return
		}

		claims, err := m.validator.ValidateAccess(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		user, err := m.users.Current(r.Context(), claims.UserID)
		if err != nil {
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				writeError(w, http.StatusUnauthorized, "Invalid access token")
				return
			}
			slog.Error("failed to load authenticated user", "user_id", claims.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(currentUserContextKey).(model.User)
	return user, ok
}

// WithUser is used by handler tests to skip token plumbing.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, currentUserContextKey, user)
}

func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}
