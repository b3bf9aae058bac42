package models

// Author writes books.
type Author struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Bio       string  `json:"bio"`
	CreatedBy *string `json:"created_by"`
}

// AuthorInput is the payload for creating an author.
type AuthorInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Book belongs to an Author. PubYear is a 4-digit year string.
type Book struct {
	ID        string  `json:"id"`
	AuthorID  string  `json:"author_id"`
	Title     string  `json:"title"`
	PubYear   string  `json:"pub_year"`
	Genre     string  `json:"genre"`
	CreatedBy *string `json:"created_by"`
}

// BookInput is the payload for creating or updating a book.
type BookInput struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	PubYear  string `json:"pub_year"`
	Genre    string `json:"genre"`
}
