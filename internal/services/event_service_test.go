package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/models"
)

func TestMutationsRecordEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	_, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito"})
	require.NoError(t, err)
	_, err = f.recipes.CreateRecipe(ctx, "", models.RecipeInput{ID: "r2", Title: "Punch"})
	require.NoError(t, err)
	require.NoError(t, f.recipes.DeleteRecipe(ctx, "alice", "r1"))

	events, err := f.events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "recipe.delete", events[0].Type)
	assert.Equal(t, "warn", events[0].Level)
	require.NotNil(t, events[0].Username)
	assert.Equal(t, "alice", *events[0].Username)

	assert.Equal(t, "recipe.create", events[1].Type)
	assert.Nil(t, events[1].Username, "guest actions have no username")

	limited, err := f.events.GetRecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFailedMutationsRecordNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	_, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito"})
	require.NoError(t, err)
	require.Error(t, f.recipes.DeleteRecipe(ctx, "bob", "r1"))

	events, err := f.events.GetRecentEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFavoriteEventsStayPrivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	_, err := f.recipes.CreateRecipe(ctx, "bob", models.RecipeInput{ID: "r1", Title: "Negroni"})
	require.NoError(t, err)
	require.NoError(t, f.favorites.Save(ctx, "alice", "x1", &models.RecipeInput{Title: "Secret Drink"}))

	public, err := f.events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "recipe.create", public[0].Type)

	mine, err := f.events.GetUserEvents(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "favorite.add", mine[0].Type)
	assert.Contains(t, mine[0].Message, "Secret Drink")

	theirs, err := f.events.GetUserEvents(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "recipe.create", theirs[0].Type)
}
