package models

import "time"

// Event represents a loggable action in the catalogue.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "recipe.create", "book.delete"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	Username  *string   `json:"username,omitempty"` // Nullable for guest actions
	CreatedAt time.Time `json:"createdAt"`
}
