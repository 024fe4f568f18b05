package handler

import (
	"net/http"
	"time"

	"go-vidtube/internal/middleware"
	"go-vidtube/internal/model"
)

// sessionCookies writes the token pair as HttpOnly cookies. Secure is only
// turned off for local development over plain HTTP.
type sessionCookies struct {
	secure bool
}

func (c sessionCookies) set(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, pair.AccessToken, pair.AccessTTL))
	http.SetCookie(w, c.cookie(middleware.RefreshTokenCookie, pair.RefreshToken, pair.RefreshTTL))
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		cookie := c.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c sessionCookies) cookie(name string, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
