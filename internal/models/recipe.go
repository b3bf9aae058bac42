package models

import "time"

// Recipe is a cocktail recipe. CreatedBy is nil for guest or imported entries.
type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Instructions string     `json:"instructions"`
	Ingredients  string     `json:"ingredients"` // comma-joined free text
	ImageURL     string     `json:"image_url"`
	Category     string     `json:"category"`
	CreatedBy    *string    `json:"created_by"`
	SavedAt      *time.Time `json:"saved_at,omitempty"` // set only in cabinet listings
}

// RecipeInput is the payload for creating, updating or importing a recipe.
type RecipeInput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Ingredients  string `json:"ingredients"`
	ImageURL     string `json:"image_url"`
	Category     string `json:"category"`
}

// SearchMode selects the column a recipe search matches against.
type SearchMode string

const (
	SearchByTitle      SearchMode = "s"
	SearchByIngredient SearchMode = "i"
)

// ParseSearchMode maps the query-string value to a mode. Anything but "i" searches titles.
func ParseSearchMode(v string) SearchMode {
	if v == string(SearchByIngredient) {
		return SearchByIngredient
	}
	return SearchByTitle
}
