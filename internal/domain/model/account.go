package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is an API login, not a tracked competitor.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
