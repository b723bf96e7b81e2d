package model

import "time"

// User is one tracked roster member. AtcoderID is stored verbatim; remote
// lookups may retry with a lowercased form when the services differ on casing.
type User struct {
	ID        int64     `json:"id"`
	AtcoderID string    `json:"atcoder_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating is the most recently synced contest rating for a user. Zero when the
// user has no rated history yet.
type Rating struct {
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}
