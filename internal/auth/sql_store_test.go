package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/database"
)

func setupSessionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO users (username, hashed_password) VALUES ('alice', 'x'), ('bob', 'x')`)
	require.NoError(t, err)
	return db
}

func TestSQLStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupSessionDB(t)
	store := NewSQLStore(db, time.Hour)

	token, err := store.Create(ctx, "alice")
	require.NoError(t, err)

	username, ok, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	var stored int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE token_hash = ?`, token).Scan(&stored))
	assert.Zero(t, stored, "raw token must not be persisted")

	require.NoError(t, store.Destroy(ctx, token))
	_, ok, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStoreExpiry(t *testing.T) {
	ctx := context.Background()
	db := setupSessionDB(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSQLStore(db, time.Hour)
	store.now = func() time.Time { return now }

	expired, err := store.Create(ctx, "alice")
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	live, err := store.Create(ctx, "bob")
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)

	_, ok, err := store.Resolve(ctx, expired)
	require.NoError(t, err)
	assert.False(t, ok)

	username, ok, err := store.Resolve(ctx, live)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", username)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLStoreUnknownToken(t *testing.T) {
	store := NewSQLStore(setupSessionDB(t), time.Hour)

	_, ok, err := store.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
