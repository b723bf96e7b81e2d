package model

import "time"

// CreditedEvent is emitted once per credited acceptance for the notification
// sink. The ingestion engine never talks to the sink directly; a dispatcher
// consumes these records.
type CreditedEvent struct {
	UserID          int64     `json:"user_id"`
	AtcoderID       string    `json:"atcoder_id"`
	ProblemID       string    `json:"problem_id"`
	Title           string    `json:"title"`
	SubmittedAt     time.Time `json:"submitted_at"`
	ScoreBase       int       `json:"score_base"`
	ScoreFinal      int       `json:"score_final"`
	WeeklyScore     int       `json:"weekly_score"`
	Streak          int       `json:"streak"`
	Difficulty      *int      `json:"difficulty,omitempty"`
	DifficultyColor string    `json:"difficulty_color,omitempty"`
	Rating          int       `json:"rating"`
	RatingColor     string    `json:"rating_color"`
}

// WeeklySummaryEvent is emitted once per week rollover with the final
// standings of the closed week.
type WeeklySummaryEvent struct {
	WeekStart time.Time          `json:"week_start"`
	Standings []LeaderboardEntry `json:"standings"`
}
