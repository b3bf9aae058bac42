package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users    services.UserServiceProvider
	sessions auth.SessionStore
	decoder  Decoder
	ttl      time.Duration
	secure   bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the Secure flag of
// the session cookie.
func NewAuthHandler(users services.UserServiceProvider, sessions auth.SessionStore, decoder Decoder, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, decoder: decoder, ttl: ttl, secure: secure}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new account creation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeBody(r, h.decoder, validation.Register, &payload); err != nil {
		handleError(w, r, err, "Failed to register.")
		return
	}

	if err := h.users.Register(r.Context(), payload.Username, payload.Password); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeError(w, http.StatusBadRequest, apperr.Message(err, "Username already taken."))
			return
		}
		handleError(w, r, err, "Failed to register.")
		return
	}

	hlog.FromRequest(r).Info().Str("username", payload.Username).Msg("User registered")
	writeMessage(w, http.StatusCreated, "Account created")
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeBody(r, h.decoder, validation.Login, &payload); err != nil {
		handleError(w, r, err, "Failed to login.")
		return
	}

	user, err := h.users.Verify(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			hlog.FromRequest(r).Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		}
		handleError(w, r, err, "Failed to login.")
		return
	}

	token, err := h.sessions.Create(r.Context(), user.Username)
	if err != nil {
		handleError(w, r, err, "Failed to start session.")
		return
	}

	auth.SetSessionCookie(w, token, h.ttl, h.secure)
	writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// Logout ends the current session, if any, and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			handleError(w, r, err, "Failed to logout.")
			return
		}
	}

	auth.ClearSessionCookie(w, h.secure)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me returns the identity of the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username := auth.IdentityFrom(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}
