package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/database"
	"github.com/isdelr/cabinet-be/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// UserServiceProvider defines the interface for the credential store.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) error
	Verify(ctx context.Context, username, password string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
}

// UserService stores accounts and their argon2id password hashes.
type UserService struct {
	db     *sql.DB
	hasher auth.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, hasher auth.PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// Register creates an account. Format problems return apperr.ErrInvalidFormat
// and a taken username returns apperr.ErrConflict, both with a public message.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	if err := checkCredentialFormat(username, password); err != nil {
		return err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username = ?", username).Scan(&exists)
	switch {
	case err == nil:
		return usernameTaken(username)
	case !errors.Is(err, sql.ErrNoRows):
		return oops.Code("USER_LOOKUP_FAILED").With("username", username).Wrap(err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code("USER_HASH_FAILED").Wrap(err)
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO users (username, hashed_password) VALUES (?, ?)", username, hashed)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return usernameTaken(username)
		}
		return oops.Code("USER_CREATE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}

// Verify checks a username/password pair. Unknown users, wrong passwords and
// empty passwords all return apperr.ErrUnauthenticated after one argon2id
// computation.
func (s *UserService) Verify(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.GetUser(ctx, username)
	found := err == nil
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, err
	}

	hash := user.HashedPassword
	if !found {
		hash = s.dummy()
	}

	ok, verr := s.hasher.Verify(password, hash)
	if verr != nil {
		return models.User{}, oops.Code("USER_VERIFY_FAILED").With("username", username).Wrap(verr)
	}
	if !found || !ok || password == "" {
		return models.User{}, oops.Code("INVALID_CREDENTIALS").
			Public("Invalid credentials").
			With("username", username).
			Wrap(apperr.ErrUnauthenticated)
	}

	user.HashedPassword = ""
	return user, nil
}

// GetUser returns a user including the password hash.
func (s *UserService) GetUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	var createdAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT username, hashed_password, created_at FROM users WHERE username = ?", username).
		Scan(&user.Username, &user.HashedPassword, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(apperr.ErrNotFound)
		}
		return models.User{}, oops.Code("USER_LOOKUP_FAILED").With("username", username).Wrap(err)
	}
	user.CreatedAt = createdAt.Time
	return user, nil
}

// dummy returns a hash used to verify unknown usernames.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("cabinet-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func checkCredentialFormat(username, password string) error {
	invalid := func(msg string) error {
		return oops.Code("INVALID_CREDENTIAL_FORMAT").Public(msg).Wrap(apperr.ErrInvalidFormat)
	}
	if len(strings.TrimSpace(username)) < 3 {
		return invalid("Username must be at least 3 characters.")
	}
	if !usernamePattern.MatchString(username) {
		return invalid("Username can only contain letters, numbers, and underscores.")
	}
	if len(password) < 3 {
		return invalid("Password must be 3 letters long.")
	}
	return nil
}

func usernameTaken(username string) error {
	return oops.Code("USERNAME_TAKEN").
		Public("Username already taken.").
		With("username", username).
		Wrap(apperr.ErrConflict)
}
