package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/database"
	"github.com/isdelr/cabinet-be/internal/models"
)

// AuthorServiceProvider defines the interface for author services.
type AuthorServiceProvider interface {
	ListAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthor(ctx context.Context, id string) (models.Author, error)
	CreateAuthor(ctx context.Context, identity string, in models.AuthorInput) (models.Author, error)
}

// AuthorService provides business logic for authors.
type AuthorService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewAuthorService creates a new AuthorService.
func NewAuthorService(db *sql.DB, events EventServiceProvider) *AuthorService {
	return &AuthorService{db: db, events: events}
}

func scanAuthor(row rowScanner) (models.Author, error) {
	var a models.Author
	var bio, createdBy sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &bio, &createdBy); err != nil {
		return models.Author{}, err
	}
	a.Bio = bio.String
	if createdBy.Valid {
		a.CreatedBy = &createdBy.String
	}
	return a, nil
}

// ListAuthors returns all authors ordered by name.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, bio, created_by FROM authors ORDER BY name ASC")
	if err != nil {
		return nil, oops.Code("AUTHOR_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, oops.Code("AUTHOR_LIST_FAILED").Wrap(err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AUTHOR_LIST_FAILED").Wrap(err)
	}
	return authors, nil
}

// GetAuthor returns one author or apperr.ErrNotFound.
func (s *AuthorService) GetAuthor(ctx context.Context, id string) (models.Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx, "SELECT id, name, bio, created_by FROM authors WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Author{}, oops.Code("AUTHOR_NOT_FOUND").
				Public("Author not found.").
				With("author_id", id).
				Wrap(apperr.ErrNotFound)
		}
		return models.Author{}, oops.Code("AUTHOR_GET_FAILED").With("author_id", id).Wrap(err)
	}
	return a, nil
}

// CreateAuthor inserts an author owned by identity. Login is required.
func (s *AuthorService) CreateAuthor(ctx context.Context, identity string, in models.AuthorInput) (models.Author, error) {
	if err := auth.Authorize(identity, nil, auth.KindAuthor, auth.ActionCreate); err != nil {
		return models.Author{}, oops.Code("AUTHOR_LOGIN_REQUIRED").Public("Please login first.").Wrap(err)
	}

	author := models.Author{
		ID:        strings.TrimSpace(in.ID),
		Name:      in.Name,
		Bio:       in.Bio,
		CreatedBy: &identity,
	}
	if author.ID == "" {
		author.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO authors (id, name, bio, created_by) VALUES (?, ?, ?, ?)",
		author.ID, author.Name, author.Bio, identity)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Author{}, oops.Code("AUTHOR_EXISTS").
				Public("This author already exists.").
				With("author_id", author.ID).
				Wrap(apperr.ErrConflict)
		}
		return models.Author{}, oops.Code("AUTHOR_CREATE_FAILED").With("author_id", author.ID).Wrap(err)
	}

	recordEvent(ctx, s.events, "author.create", LevelInfo, fmt.Sprintf("Author '%s' was added.", author.Name), identity)
	return author, nil
}
