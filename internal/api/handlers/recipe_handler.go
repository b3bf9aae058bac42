package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// RecipeHandler handles HTTP requests related to recipes.
type RecipeHandler struct {
	service services.RecipeServiceProvider
	decoder Decoder
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service services.RecipeServiceProvider, decoder Decoder) *RecipeHandler {
	return &RecipeHandler{service: service, decoder: decoder}
}

type recipesResponse struct {
	Recipes []models.Recipe `json:"recipes"`
}

// GetAll lists every recipe ordered by title.
func (h *RecipeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListRecipes(r.Context())
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}

// Search matches ?q= against titles, or ingredients when ?type=i.
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recipes, err := h.service.SearchRecipes(r.Context(), q.Get("q"), models.ParseSearchMode(q.Get("type")))
	if err != nil {
		handleError(w, r, err, "Database search failed.")
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}

// Mine lists the recipes created by the current user.
func (h *RecipeHandler) Mine(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListRecipesByOwner(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}

// Get returns a single recipe.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Create adds a recipe. Guests may create recipes; they are stored without an owner.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	if err := decodeBody(r, h.decoder, validation.Recipe, &in); err != nil {
		handleError(w, r, err, "Failed to save recipe.")
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), auth.IdentityFrom(r.Context()), in)
	if err != nil {
		handleError(w, r, err, "Failed to save recipe.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Recipe saved to the public cabinet!",
		"recipe":  recipe,
	})
}

// Update replaces a recipe owned by the current user.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	if err := decodeBody(r, h.decoder, validation.RecipeUpdate, &in); err != nil {
		handleError(w, r, err, "Failed to update recipe.")
		return
	}

	recipe, err := h.service.UpdateRecipe(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err, "Failed to update recipe.")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Delete removes a recipe owned by the current user.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRecipe(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted successfully")
}
