package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/models"
	"github.com/isdelr/cabinet-be/internal/services"
)

const maxEventLimit = 200

// EventHandler handles HTTP requests related to catalogue activity.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent public activity, newest first.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetRecentEvents(r.Context(), eventLimit(r))
	if err != nil {
		handleError(w, r, err, "Failed to retrieve events.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Event{"events": events})
}

// GetMine returns the current user's own activity, favorites included.
func (h *EventHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetUserEvents(r.Context(), auth.IdentityFrom(r.Context()), eventLimit(r))
	if err != nil {
		handleError(w, r, err, "Failed to retrieve events.")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Event{"events": events})
}

func eventLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	return limit
}
