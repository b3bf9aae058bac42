package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes = 32             // 32 bytes = 64 hex chars
	DefaultSessionTTL = 24 * time.Hour // used when a store is built with ttl <= 0
	SessionCookieName = "token"
)

// SessionStore maps opaque session tokens to usernames.
type SessionStore interface {
	// Create issues a new token for username.
	Create(ctx context.Context, username string) (string, error)

	// Resolve returns the username for token. Unknown or expired tokens
	// return ("", false, nil).
	Resolve(ctx context.Context, token string) (string, bool, error)

	// Destroy removes token. Destroying an unknown token is not an error.
	Destroy(ctx context.Context, token string) error

	// DeleteExpired removes expired sessions and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
}

// GenerateSessionToken returns a hex-encoded token read from crypto/rand.
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// HashSessionToken computes the SHA256 hash stored in place of the token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
