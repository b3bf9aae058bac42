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

const bookColumns = "id, author_id, title, pub_year, genre, created_by"

// BookServiceProvider defines the interface for book services.
type BookServiceProvider interface {
	ListBooks(ctx context.Context, genre string) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (models.Book, error)
	CreateBook(ctx context.Context, identity string, in models.BookInput) (models.Book, error)
	UpdateBook(ctx context.Context, identity, id string, in models.BookInput) (models.Book, error)
	DeleteBook(ctx context.Context, identity, id string) error
}

// BookService provides business logic for books. Unlike recipes, books can
// only be created by a logged-in user.
type BookService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewBookService creates a new BookService.
func NewBookService(db *sql.DB, events EventServiceProvider) *BookService {
	return &BookService{db: db, events: events}
}

func scanBook(row rowScanner) (models.Book, error) {
	var b models.Book
	var genre, createdBy sql.NullString
	if err := row.Scan(&b.ID, &b.AuthorID, &b.Title, &b.PubYear, &genre, &createdBy); err != nil {
		return models.Book{}, err
	}
	b.Genre = genre.String
	if createdBy.Valid {
		b.CreatedBy = &createdBy.String
	}
	return b, nil
}

// ListBooks returns books ordered by title, optionally restricted to genre.
func (s *BookService) ListBooks(ctx context.Context, genre string) ([]models.Book, error) {
	query := "SELECT " + bookColumns + " FROM books"
	var args []any
	if genre = strings.TrimSpace(genre); genre != "" {
		query += " WHERE genre = ? COLLATE NOCASE"
		args = append(args, genre)
	}
	query += " ORDER BY title ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("BOOK_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, oops.Code("BOOK_LIST_FAILED").Wrap(err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BOOK_LIST_FAILED").Wrap(err)
	}
	return books, nil
}

// GetBook returns one book or apperr.ErrNotFound.
func (s *BookService) GetBook(ctx context.Context, id string) (models.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, oops.Code("BOOK_NOT_FOUND").
				Public("Book not found.").
				With("book_id", id).
				Wrap(apperr.ErrNotFound)
		}
		return models.Book{}, oops.Code("BOOK_GET_FAILED").With("book_id", id).Wrap(err)
	}
	return b, nil
}

// CreateBook inserts a book owned by identity.
func (s *BookService) CreateBook(ctx context.Context, identity string, in models.BookInput) (models.Book, error) {
	if err := auth.Authorize(identity, nil, auth.KindBook, auth.ActionCreate); err != nil {
		return models.Book{}, oops.Code("BOOK_LOGIN_REQUIRED").Public("Please login first.").Wrap(err)
	}

	book := models.Book{
		ID:        strings.TrimSpace(in.ID),
		AuthorID:  in.AuthorID,
		Title:     in.Title,
		PubYear:   in.PubYear,
		Genre:     in.Genre,
		CreatedBy: &identity,
	}
	if book.ID == "" {
		book.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO books ("+bookColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		book.ID, book.AuthorID, book.Title, book.PubYear, book.Genre, identity)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.Book{}, unknownAuthor(book.AuthorID)
		}
		if database.IsUniqueViolation(err) {
			return models.Book{}, oops.Code("BOOK_EXISTS").
				Public("This book already exists.").
				With("book_id", book.ID).
				Wrap(apperr.ErrConflict)
		}
		return models.Book{}, oops.Code("BOOK_CREATE_FAILED").With("book_id", book.ID).Wrap(err)
	}

	recordEvent(ctx, s.events, "book.create", LevelInfo, fmt.Sprintf("Book '%s' was added.", book.Title), identity)
	return book, nil
}

// UpdateBook replaces the fields of a book owned by identity.
func (s *BookService) UpdateBook(ctx context.Context, identity, id string, in models.BookInput) (models.Book, error) {
	existing, err := s.authorizeOwner(ctx, identity, id, auth.ActionUpdate)
	if err != nil {
		return models.Book{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE books SET author_id = ?, title = ?, pub_year = ?, genre = ? WHERE id = ? AND created_by = ?",
		in.AuthorID, in.Title, in.PubYear, in.Genre, id, identity)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.Book{}, unknownAuthor(in.AuthorID)
		}
		return models.Book{}, oops.Code("BOOK_UPDATE_FAILED").With("book_id", id).Wrap(err)
	}
	if err := requireAffected(res, "BOOK_FORBIDDEN", "book_id", id); err != nil {
		return models.Book{}, err
	}

	existing.AuthorID = in.AuthorID
	existing.Title = in.Title
	existing.PubYear = in.PubYear
	existing.Genre = in.Genre

	recordEvent(ctx, s.events, "book.update", LevelInfo, fmt.Sprintf("Book '%s' was updated.", existing.Title), identity)
	return existing, nil
}

// DeleteBook removes a book owned by identity.
func (s *BookService) DeleteBook(ctx context.Context, identity, id string) error {
	existing, err := s.authorizeOwner(ctx, identity, id, auth.ActionDelete)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ? AND created_by = ?", id, identity)
	if err != nil {
		return oops.Code("BOOK_DELETE_FAILED").With("book_id", id).Wrap(err)
	}
	if err := requireAffected(res, "BOOK_FORBIDDEN", "book_id", id); err != nil {
		return err
	}

	recordEvent(ctx, s.events, "book.delete", LevelWarn, fmt.Sprintf("Book '%s' was deleted.", existing.Title), identity)
	return nil
}

func (s *BookService) authorizeOwner(ctx context.Context, identity, id string, action auth.Action) (models.Book, error) {
	if identity == "" {
		return models.Book{}, oops.Code("BOOK_LOGIN_REQUIRED").
			Public("Please login first.").
			Wrap(apperr.ErrUnauthenticated)
	}

	existing, err := s.GetBook(ctx, id)
	if err != nil {
		return models.Book{}, err
	}

	if err := auth.Authorize(identity, existing.CreatedBy, auth.KindBook, action); err != nil {
		return models.Book{}, oops.Code("BOOK_FORBIDDEN").
			Public("Unauthorized").
			With("book_id", id).
			With("username", identity).
			Wrap(err)
	}
	return existing, nil
}

func unknownAuthor(authorID string) error {
	return oops.Code("BOOK_UNKNOWN_AUTHOR").
		With("author_id", authorID).
		Wrap(apperr.NewValidationError(fmt.Sprintf("%q: unknown author", "author_id")))
}
