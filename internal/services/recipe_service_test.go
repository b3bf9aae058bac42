package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/models"
)

func titles(recipes []models.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func TestCreateAndListRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	created, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito", Ingredients: "Rum, Mint"})
	require.NoError(t, err)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "alice", *created.CreatedBy)

	guest, err := f.recipes.CreateRecipe(ctx, "", models.RecipeInput{Title: "Daiquiri"})
	require.NoError(t, err)
	assert.NotEmpty(t, guest.ID)
	assert.Nil(t, guest.CreatedBy)

	list, err := f.recipes.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Daiquiri", "Mojito"}, titles(list))
	assert.Equal(t, "Rum, Mint", list[1].Ingredients)

	mine, err := f.recipes.ListRecipesByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mojito"}, titles(mine))

	_, err = f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Again"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "This recipe is already in the cabinet.", apperr.Message(err, ""))
}

func TestDeleteRecipeOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	_, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito"})
	require.NoError(t, err)
	_, err = f.recipes.CreateRecipe(ctx, "", models.RecipeInput{ID: "g1", Title: "Guest Punch"})
	require.NoError(t, err)

	err = f.recipes.DeleteRecipe(ctx, "bob", "r1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.recipes.DeleteRecipe(ctx, "", "r1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	err = f.recipes.DeleteRecipe(ctx, "alice", "g1")
	assert.ErrorIs(t, err, apperr.ErrForbidden, "ownerless recipes cannot be deleted")

	err = f.recipes.DeleteRecipe(ctx, "alice", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	r, err := f.recipes.GetRecipe(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", r.Title)

	require.NoError(t, f.recipes.DeleteRecipe(ctx, "alice", "r1"))
	_, err = f.recipes.GetRecipe(ctx, "r1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateRecipeOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	_, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito", Category: "Cocktail"})
	require.NoError(t, err)

	_, err = f.recipes.UpdateRecipe(ctx, "bob", "r1", models.RecipeInput{Title: "Hijacked"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	r, err := f.recipes.GetRecipe(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", r.Title)

	updated, err := f.recipes.UpdateRecipe(ctx, "alice", "r1", models.RecipeInput{Title: "Virgin Mojito", Category: "Mocktail"})
	require.NoError(t, err)
	assert.Equal(t, "Virgin Mojito", updated.Title)
	require.NotNil(t, updated.CreatedBy)
	assert.Equal(t, "alice", *updated.CreatedBy)

	r, err = f.recipes.GetRecipe(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Mocktail", r.Category)
}

func TestSearchRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, in := range []models.RecipeInput{
		{ID: "1", Title: "Margarita", Ingredients: "Tequila, Triple Sec, Lime Juice"},
		{ID: "2", Title: "Frozen MARGARITA", Ingredients: "Tequila, Ice"},
		{ID: "3", Title: "Mojito", Ingredients: "Rum, Mint, Lime Juice"},
		{ID: "4", Title: "100% Punch", Ingredients: "Juice"},
		{ID: "5", Title: "Old_Fashioned", Ingredients: "Bourbon"},
	} {
		_, err := f.recipes.CreateRecipe(ctx, "", in)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		mode  models.SearchMode
		want  []string
	}{
		{"empty query", "", models.SearchByTitle, []string{}},
		{"blank query", "   ", models.SearchByIngredient, []string{}},
		{"title case insensitive", "marg", models.SearchByTitle, []string{"Frozen MARGARITA", "Margarita"}},
		{"trimmed query", "  mojito ", models.SearchByTitle, []string{"Mojito"}},
		{"ingredient", "lime", models.SearchByIngredient, []string{"Margarita", "Mojito"}},
		{"percent is literal", "%", models.SearchByTitle, []string{"100% Punch"}},
		{"underscore is literal", "d_f", models.SearchByTitle, []string{"Old_Fashioned"}},
		{"unknown mode searches titles", "rum", models.ParseSearchMode("x"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.recipes.SearchRecipes(ctx, tt.query, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestUpsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	_, err := f.recipes.CreateRecipe(ctx, "alice", models.RecipeInput{ID: "r1", Title: "Mojito"})
	require.NoError(t, err)

	require.NoError(t, f.recipes.UpsertIfAbsent(ctx, "r1", models.RecipeInput{Title: "Overwritten"}))
	r, err := f.recipes.GetRecipe(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Mojito", r.Title)
	require.NotNil(t, r.CreatedBy)

	require.NoError(t, f.recipes.UpsertIfAbsent(ctx, "11007", models.RecipeInput{Title: "Margarita"}))
	r, err = f.recipes.GetRecipe(ctx, "11007")
	require.NoError(t, err)
	assert.Equal(t, "Margarita", r.Title)
	assert.Nil(t, r.CreatedBy)
	assert.Empty(t, r.Instructions)
}
