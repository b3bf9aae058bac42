package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

// BookHandler handles HTTP requests related to books.
type BookHandler struct {
	service services.BookServiceProvider
	decoder Decoder
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service services.BookServiceProvider, decoder Decoder) *BookHandler {
	return &BookHandler{service: service, decoder: decoder}
}

// GetAll lists books, filtered by ?genre= when present.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Book{"books": books})
}

// Get returns a single book.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Create adds a book owned by the current user.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.BookInput
	if err := decodeBody(r, h.decoder, validation.Book, &in); err != nil {
		handleError(w, r, err, "Failed to create book.")
		return
	}

	book, err := h.service.CreateBook(r.Context(), auth.IdentityFrom(r.Context()), in)
	if err != nil {
		handleError(w, r, err, "Failed to create book.")
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// Update replaces a book owned by the current user.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.BookInput
	if err := decodeBody(r, h.decoder, validation.Book, &in); err != nil {
		handleError(w, r, err, "Failed to update book.")
		return
	}

	book, err := h.service.UpdateBook(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err, "Failed to update book.")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Delete removes a book owned by the current user.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBook(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "Database error.")
		return
	}
	writeMessage(w, http.StatusOK, "Deleted successfully")
}
