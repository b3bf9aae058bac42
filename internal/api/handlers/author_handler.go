package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// AuthorHandler handles HTTP requests related to authors.
type AuthorHandler struct {
	service services.AuthorServiceProvider
	decoder Decoder
}

// NewAuthorHandler creates a new AuthorHandler.
func NewAuthorHandler(service services.AuthorServiceProvider, decoder Decoder) *AuthorHandler {
	return &AuthorHandler{service: service, decoder: decoder}
}

// GetAll lists authors by name.
func (h *AuthorHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Author{"authors": authors})
}

// Get returns a single author.
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	author, err := h.service.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, author)
}

// Create adds an author owned by the current user.
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.AuthorInput
	if err := decodeBody(r, h.decoder, validation.Author, &in); err != nil {
		handleError(w, r, err, "Failed to create author.")
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), auth.IdentityFrom(r.Context()), in)
	if err != nil {
		handleError(w, r, err, "Failed to create author.")
		return
	}
	writeJSON(w, http.StatusCreated, author)
}
