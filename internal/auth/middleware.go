package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

type contextKey string

// IdentityKey is the context key holding the resolved username.
const IdentityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying username.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, IdentityKey, username)
}

// IdentityFrom returns the username stored in ctx, or "" for anonymous requests.
func IdentityFrom(ctx context.Context) string {
	username, _ := ctx.Value(IdentityKey).(string)
	return username
}

// SessionMiddleware resolves the session cookie into an identity. A missing,
// unknown or expired token leaves the request anonymous; it never fails the
// request.
func SessionMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			username, ok, err := store.Resolve(r.Context(), cookie.Value)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("Failed to resolve session")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), username)))
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not logged in"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie writes the session cookie. secure should be true in production.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
