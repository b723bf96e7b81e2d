package model

import "time"

// Submission is one credited acceptance. Append-only: raw remote submissions
// that were rejected, duplicated or inside the cooldown window never produce a
// row.
type Submission struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	ProblemID   string    `json:"problem_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	ScoreBase   int       `json:"score_base"`
	StreakMult  float64   `json:"streak_mult"`
	ScoreFinal  int       `json:"score_final"`
}

// RemoteResult is one entry of the remote submission feed after boundary
// decoding.
type RemoteResult struct {
	ID          int64  `json:"id"`
	EpochSecond int64  `json:"epoch_second"`
	ProblemID   string `json:"problem_id"`
	Result      string `json:"result"`
}

const ResultAccepted = "AC"
