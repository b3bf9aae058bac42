package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/isdelr/cabinet-be/internal/apperr"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
)

// FavoriteServiceProvider defines the interface for a user's saved recipes.
type FavoriteServiceProvider interface {
	Save(ctx context.Context, identity, recipeID string, in *models.RecipeInput) error
	Remove(ctx context.Context, identity, recipeID string) error
	IsSaved(ctx context.Context, identity, recipeID string) (bool, error)
	ListSaved(ctx context.Context, identity string) ([]models.Recipe, error)
}

// FavoriteService manages the saved_recipes association. Saving a recipe
// never changes who owns it.
type FavoriteService struct {
	db      *sql.DB
	recipes RecipeServiceProvider
	events  EventServiceProvider
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(db *sql.DB, recipes RecipeServiceProvider, events EventServiceProvider) *FavoriteService {
	return &FavoriteService{db: db, recipes: recipes, events: events}
}

func favoriteLoginRequired() error {
	return oops.Code("FAVORITE_LOGIN_REQUIRED").Public("Login required.").Wrap(apperr.ErrUnauthenticated)
}

// Save links recipeID to identity. When in carries a title the recipe is first
// imported as an ownerless entry if it does not exist yet. Saving twice is a no-op.
func (s *FavoriteService) Save(ctx context.Context, identity, recipeID string, in *models.RecipeInput) error {
	if err := auth.Authorize(identity, nil, auth.KindRecipe, auth.ActionFavorite); err != nil {
		return favoriteLoginRequired()
	}

	if in != nil && in.Title != "" {
		if err := s.recipes.UpsertIfAbsent(ctx, recipeID, *in); err != nil {
			return err
		}
	}

	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO saved_recipes (username, recipe_id) VALUES (?, ?)", identity, recipeID)
	if err != nil {
		return oops.Code("FAVORITE_SAVE_FAILED").With("recipe_id", recipeID).With("username", identity).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		recordEvent(ctx, s.events, "favorite.add", LevelInfo, "Saved '"+recipe.Title+"' to the cabinet.", identity)
	}
	return nil
}

// Remove unlinks recipeID from identity. Removing a missing link is not an error.
func (s *FavoriteService) Remove(ctx context.Context, identity, recipeID string) error {
	if err := auth.Authorize(identity, nil, auth.KindRecipe, auth.ActionFavorite); err != nil {
		return favoriteLoginRequired()
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM saved_recipes WHERE username = ? AND recipe_id = ?", identity, recipeID)
	if err != nil {
		return oops.Code("FAVORITE_REMOVE_FAILED").With("recipe_id", recipeID).With("username", identity).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		recordEvent(ctx, s.events, "favorite.remove", LevelInfo, "Removed recipe "+recipeID+" from the cabinet.", identity)
	}
	return nil
}

// IsSaved reports whether identity saved recipeID. Anonymous callers get false.
func (s *FavoriteService) IsSaved(ctx context.Context, identity, recipeID string) (bool, error) {
	if identity == "" {
		return false, nil
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM saved_recipes WHERE username = ? AND recipe_id = ?", identity, recipeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("FAVORITE_LOOKUP_FAILED").With("recipe_id", recipeID).Wrap(err)
	}
	return true, nil
}

// ListSaved returns the recipes identity saved, most recently saved first.
func (s *FavoriteService) ListSaved(ctx context.Context, identity string) ([]models.Recipe, error) {
	if identity == "" {
		return nil, favoriteLoginRequired()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.instructions, r.ingredients, r.image_url, r.category, r.created_by, s.saved_at
		 FROM recipes r JOIN saved_recipes s ON s.recipe_id = r.id
		 WHERE s.username = ?
		 ORDER BY s.saved_at DESC, s.rowid DESC`, identity)
	if err != nil {
		return nil, oops.Code("FAVORITE_LIST_FAILED").With("username", identity).Wrap(err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var savedAt sql.NullTime
		r, err := scanRecipe(rows, &savedAt)
		if err != nil {
			return nil, oops.Code("FAVORITE_LIST_FAILED").With("username", identity).Wrap(err)
		}
		if savedAt.Valid {
			t := savedAt.Time
			r.SavedAt = &t
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("FAVORITE_LIST_FAILED").With("username", identity).Wrap(err)
	}
	return recipes, nil
}
