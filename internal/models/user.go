package models

import "time"

// User represents a registered account.
type User struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Never expose this to the client
	CreatedAt      time.Time `json:"createdAt"`
}
