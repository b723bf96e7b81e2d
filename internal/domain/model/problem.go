package model

import "time"

// Problem is a row of the synced difficulty catalog. DifficultyRaw is the
// estimator output and may be negative; Difficulty is the normalized display
// value. Both are nil for problems without a model.
type Problem struct {
	ID            string    `json:"id"`
	ContestID     string    `json:"contest_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	DifficultyRaw *float64  `json:"difficulty_raw,omitempty"`
	Difficulty    *int      `json:"difficulty,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
