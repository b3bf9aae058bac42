package services_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/database"
	"github.com/isdelr/cabinet-be/internal/services"
)

var cheapParams = auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

type fixture struct {
	db        *sql.DB
	users     *services.UserService
	events    *services.EventService
	recipes   *services.RecipeService
	favorites *services.FavoriteService
	authors   *services.AuthorService
	books     *services.BookService
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "cabinet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func newFixture(t *testing.T, usernames ...string) *fixture {
	t.Helper()
	db := setupDB(t)
	events := services.NewEventService(db)
	recipes := services.NewRecipeService(db, events)
	f := &fixture{
		db:        db,
		users:     services.NewUserService(db, auth.NewArgon2idHasherWithParams(cheapParams)),
		events:    events,
		recipes:   recipes,
		favorites: services.NewFavoriteService(db, recipes, events),
		authors:   services.NewAuthorService(db, events),
		books:     services.NewBookService(db, events),
	}
	for _, u := range usernames {
		require.NoError(t, f.users.Register(context.Background(), u, "pw123"))
	}
	return f
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
