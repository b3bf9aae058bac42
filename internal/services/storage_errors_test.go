package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
)

var errDriver = errors.New("disk I/O error")

func assertStorageError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	for _, kind := range []error{
		apperr.ErrValidation, apperr.ErrInvalidFormat, apperr.ErrUnauthenticated,
		apperr.ErrForbidden, apperr.ErrNotFound, apperr.ErrConflict,
	} {
		assert.NotErrorIs(t, err, kind)
	}
	assert.ErrorIs(t, err, errDriver)
}

func TestRecipeStorageErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title")).WillReturnError(errDriver)

		_, err = services.NewRecipeService(db, nil).ListRecipes(ctx)
		assertStorageError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recipes")).WillReturnError(errDriver)

		_, err = services.NewRecipeService(db, nil).CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito"})
		assertStorageError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete matching no rows is forbidden", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title")).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "instructions", "ingredients", "image_url", "category", "created_by"}).
				AddRow("r1", "Mojito", nil, nil, nil, nil, "alice"))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recipes WHERE id = ? AND created_by = ?")).
			WithArgs("r1", "alice").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = services.NewRecipeService(db, nil).DeleteRecipe(ctx, "alice", "r1")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserStorageErrors(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	users := services.NewUserService(db, auth.NewArgon2idHasherWithParams(cheapParams))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users")).WillReturnError(errDriver)
	assertStorageError(t, users.Register(ctx, "alice", "pw123"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users")).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(errDriver)
	assertStorageError(t, users.Register(ctx, "alice", "pw123"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT username, hashed_password")).WillReturnError(errDriver)
	_, err = users.Verify(ctx, "alice", "pw123")
	assertStorageError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteStorageErrors(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	favorites := services.NewFavoriteService(db, services.NewRecipeService(db, nil), nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM saved_recipes")).WillReturnError(errDriver)
	_, err = favorites.IsSaved(ctx, "alice", "r1")
	assertStorageError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM recipes r JOIN saved_recipes")).WillReturnError(errDriver)
	_, err = favorites.ListSaved(ctx, "alice")
	assertStorageError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
