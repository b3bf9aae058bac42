package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// FavoriteHandler handles favorites and the personal cabinet. Both views are
// backed by the same saved-recipe association.
type FavoriteHandler struct {
	service services.FavoriteServiceProvider
	decoder Decoder
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service services.FavoriteServiceProvider, decoder Decoder) *FavoriteHandler {
	return &FavoriteHandler{service: service, decoder: decoder}
}

// Status reports whether the current user saved the recipe. Anonymous
// requests get {favorited:false}.
func (h *FavoriteHandler) Status(w http.ResponseWriter, r *http.Request) {
	saved, err := h.service.IsSaved(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorited": saved})
}

// Add saves a recipe as a favorite.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	if h.save(w, r, "Failed to favorite.") {
		writeMessage(w, http.StatusOK, "Added to favorites.")
	}
}

// SaveToCabinet saves a recipe into the user's cabinet.
func (h *FavoriteHandler) SaveToCabinet(w http.ResponseWriter, r *http.Request) {
	if h.save(w, r, "Failed to save.") {
		writeMessage(w, http.StatusOK, "Saved to cabinet.")
	}
}

func (h *FavoriteHandler) save(w http.ResponseWriter, r *http.Request, fallback string) bool {
	var in models.RecipeInput
	if err := decodeBody(r, h.decoder, validation.Favorite, &in); err != nil {
		handleError(w, r, err, fallback)
		return false
	}

	if err := h.service.Save(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), &in); err != nil {
		handleError(w, r, err, fallback)
		return false
	}
	return true
}

// Remove drops a recipe from the user's favorites.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "Failed to unfavorite.")
		return
	}
	writeMessage(w, http.StatusOK, "Removed from favorites.")
}

// Cabinet lists the user's saved recipes, most recent first.
func (h *FavoriteHandler) Cabinet(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListSaved(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		handleError(w, r, err, "Failed to load cabinet.")
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}
