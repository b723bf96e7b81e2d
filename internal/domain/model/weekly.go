package model

import "time"

// WeeklyScore is the accumulated score of one user within one week bucket.
// Score only ever grows via additive upserts.
type WeeklyScore struct {
	WeekStart time.Time `json:"week_start"`
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    int64     `json:"user_id"`
	AtcoderID string    `json:"atcoder_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}
