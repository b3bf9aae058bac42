package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"
)

// SQLStore keeps sessions in the sessions table so several processes sharing
// one database see the same logins. Only the SHA256 of each token is stored.
type SQLStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLStore creates a database-backed store whose sessions live for ttl.
func NewSQLStore(db *sql.DB, ttl time.Duration) *SQLStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SQLStore{db: db, ttl: ttl, now: time.Now}
}

// Create issues a new token for username.
func (s *SQLStore) Create(ctx context.Context, username string) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, username, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		HashSessionToken(token), username, now.Add(s.ttl).Unix(), now)
	if err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").With("username", username).Wrap(err)
	}
	return token, nil
}

// Resolve returns the username bound to token if it has not expired.
func (s *SQLStore) Resolve(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM sessions WHERE token_hash = ? AND expires_at > ?`,
		HashSessionToken(token), s.now().Unix()).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("SESSION_RESOLVE_FAILED").Wrap(err)
	}
	return username, true, nil
}

// Destroy removes token.
func (s *SQLStore) Destroy(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, HashSessionToken(token)); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired sessions.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").Wrap(err)
	}
	return res.RowsAffected()
}

// Count returns the number of unexpired sessions.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at > ?`, s.now().Unix()).Scan(&n)
	if err != nil {
		return 0, oops.Code("SESSION_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}
