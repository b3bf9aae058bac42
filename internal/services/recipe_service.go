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

const recipeColumns = "id, title, instructions, ingredients, image_url, category, created_by"

// RecipeServiceProvider defines the interface for recipe storage.
type RecipeServiceProvider interface {
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	ListRecipesByOwner(ctx context.Context, username string) ([]models.Recipe, error)
	SearchRecipes(ctx context.Context, query string, mode models.SearchMode) ([]models.Recipe, error)
	CreateRecipe(ctx context.Context, identity string, in models.RecipeInput) (models.Recipe, error)
	UpdateRecipe(ctx context.Context, identity, id string, in models.RecipeInput) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, identity, id string) error
	UpsertIfAbsent(ctx context.Context, id string, in models.RecipeInput) error
}

// RecipeService provides business logic for recipes.
type RecipeService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(db *sql.DB, events EventServiceProvider) *RecipeService {
	return &RecipeService{db: db, events: events}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, extra ...any) (models.Recipe, error) {
	var r models.Recipe
	var instructions, ingredients, imageURL, category, createdBy sql.NullString
	dest := append([]any{&r.ID, &r.Title, &instructions, &ingredients, &imageURL, &category, &createdBy}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Recipe{}, err
	}
	r.Instructions = instructions.String
	r.Ingredients = ingredients.String
	r.ImageURL = imageURL.String
	r.Category = category.String
	if createdBy.Valid {
		r.CreatedBy = &createdBy.String
	}
	return r, nil
}

func (s *RecipeService) queryRecipes(ctx context.Context, code, query string, args ...any) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Code(code).Wrap(err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, oops.Code(code).Wrap(err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code(code).Wrap(err)
	}
	return recipes, nil
}

// ListRecipes returns every recipe ordered by title.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, "RECIPE_LIST_FAILED",
		"SELECT "+recipeColumns+" FROM recipes ORDER BY title ASC")
}

// ListRecipesByOwner returns the recipes created by username.
func (s *RecipeService) ListRecipesByOwner(ctx context.Context, username string) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, "RECIPE_LIST_FAILED",
		"SELECT "+recipeColumns+" FROM recipes WHERE created_by = ? ORDER BY title ASC", username)
}

// GetRecipe returns one recipe or apperr.ErrNotFound.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Recipe{}, oops.Code("RECIPE_NOT_FOUND").
				Public("Recipe not found.").
				With("recipe_id", id).
				Wrap(apperr.ErrNotFound)
		}
		return models.Recipe{}, oops.Code("RECIPE_GET_FAILED").With("recipe_id", id).Wrap(err)
	}
	return r, nil
}

// SearchRecipes matches query case-insensitively against titles, or ingredients
// when mode is SearchByIngredient. A blank query returns no recipes.
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, mode models.SearchMode) ([]models.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Recipe{}, nil
	}

	column := "title"
	if mode == models.SearchByIngredient {
		column = "ingredients"
	}

	pattern := "%" + escapeLike(query) + "%"
	return s.queryRecipes(ctx, "RECIPE_SEARCH_FAILED",
		fmt.Sprintf("SELECT %s FROM recipes WHERE %s LIKE ? ESCAPE '\\' ORDER BY title ASC", recipeColumns, column),
		pattern)
}

// CreateRecipe inserts a recipe owned by identity, or by nobody for guests.
// A blank id is replaced with a generated one.
func (s *RecipeService) CreateRecipe(ctx context.Context, identity string, in models.RecipeInput) (models.Recipe, error) {
	if err := auth.Authorize(identity, nil, auth.KindRecipe, auth.ActionCreate); err != nil {
		return models.Recipe{}, oops.Code("RECIPE_CREATE_DENIED").Wrap(err)
	}

	recipe := models.Recipe{
		ID:           strings.TrimSpace(in.ID),
		Title:        in.Title,
		Instructions: in.Instructions,
		Ingredients:  in.Ingredients,
		ImageURL:     in.ImageURL,
		Category:     in.Category,
	}
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	if identity != "" {
		recipe.CreatedBy = &identity
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO recipes ("+recipeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		recipe.ID, recipe.Title, recipe.Instructions, recipe.Ingredients, recipe.ImageURL, recipe.Category, recipe.CreatedBy)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Recipe{}, oops.Code("RECIPE_EXISTS").
				Public("This recipe is already in the cabinet.").
				With("recipe_id", recipe.ID).
				Wrap(apperr.ErrConflict)
		}
		return models.Recipe{}, oops.Code("RECIPE_CREATE_FAILED").With("recipe_id", recipe.ID).Wrap(err)
	}

	recordEvent(ctx, s.events, "recipe.create", LevelInfo, fmt.Sprintf("Recipe '%s' was added.", recipe.Title), identity)
	return recipe, nil
}

// UpdateRecipe replaces the fields of a recipe owned by identity.
func (s *RecipeService) UpdateRecipe(ctx context.Context, identity, id string, in models.RecipeInput) (models.Recipe, error) {
	existing, err := s.authorizeOwner(ctx, identity, id, auth.ActionUpdate)
	if err != nil {
		return models.Recipe{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET title = ?, instructions = ?, ingredients = ?, image_url = ?, category = ?
		 WHERE id = ? AND created_by = ?`,
		in.Title, in.Instructions, in.Ingredients, in.ImageURL, in.Category, id, identity)
	if err != nil {
		return models.Recipe{}, oops.Code("RECIPE_UPDATE_FAILED").With("recipe_id", id).Wrap(err)
	}
	if err := requireAffected(res, "RECIPE_FORBIDDEN", "recipe_id", id); err != nil {
		return models.Recipe{}, err
	}

	existing.Title = in.Title
	existing.Instructions = in.Instructions
	existing.Ingredients = in.Ingredients
	existing.ImageURL = in.ImageURL
	existing.Category = in.Category

	recordEvent(ctx, s.events, "recipe.update", LevelInfo, fmt.Sprintf("Recipe '%s' was updated.", existing.Title), identity)
	return existing, nil
}

// DeleteRecipe removes a recipe owned by identity.
func (s *RecipeService) DeleteRecipe(ctx context.Context, identity, id string) error {
	existing, err := s.authorizeOwner(ctx, identity, id, auth.ActionDelete)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ? AND created_by = ?", id, identity)
	if err != nil {
		return oops.Code("RECIPE_DELETE_FAILED").With("recipe_id", id).Wrap(err)
	}
	if err := requireAffected(res, "RECIPE_FORBIDDEN", "recipe_id", id); err != nil {
		return err
	}

	recordEvent(ctx, s.events, "recipe.delete", LevelWarn, fmt.Sprintf("Recipe '%s' was deleted.", existing.Title), identity)
	return nil
}

// UpsertIfAbsent inserts an ownerless recipe under id unless one already exists.
func (s *RecipeService) UpsertIfAbsent(ctx context.Context, id string, in models.RecipeInput) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO recipes ("+recipeColumns+") VALUES (?, ?, ?, ?, ?, ?, NULL)",
		id, in.Title, nullIfEmpty(in.Instructions), nullIfEmpty(in.Ingredients), nullIfEmpty(in.ImageURL), nullIfEmpty(in.Category))
	if err != nil {
		return oops.Code("RECIPE_UPSERT_FAILED").With("recipe_id", id).Wrap(err)
	}
	return nil
}

// authorizeOwner fetches the recipe and checks identity against its owner.
// Anonymous callers get ErrUnauthenticated before the lookup.
func (s *RecipeService) authorizeOwner(ctx context.Context, identity, id string, action auth.Action) (models.Recipe, error) {
	if identity == "" {
		return models.Recipe{}, oops.Code("RECIPE_LOGIN_REQUIRED").
			Public("Please login first.").
			Wrap(apperr.ErrUnauthenticated)
	}

	existing, err := s.GetRecipe(ctx, id)
	if err != nil {
		return models.Recipe{}, err
	}

	if err := auth.Authorize(identity, existing.CreatedBy, auth.KindRecipe, action); err != nil {
		return models.Recipe{}, oops.Code("RECIPE_FORBIDDEN").
			Public("Unauthorized").
			With("recipe_id", id).
			With("username", identity).
			Wrap(err)
	}
	return existing, nil
}

// requireAffected turns a zero-row owner-scoped statement into ErrForbidden.
func requireAffected(res sql.Result, code, key, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code(code).With(key, id).Wrap(err)
	}
	if n == 0 {
		return oops.Code(code).Public("Unauthorized").With(key, id).Wrap(apperr.ErrForbidden)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
