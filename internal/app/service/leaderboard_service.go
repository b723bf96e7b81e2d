package service

import (
	"context"
	"fmt"
	"time"

	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"
	"atcrank/internal/domain/week"
)

// Leaderboard is the ranked standings of one week bucket.
type Leaderboard struct {
	WeekStart time.Time                `json:"week_start"`
	WeekEnd   time.Time                `json:"week_end"`
	Entries   []model.LeaderboardEntry `json:"entries"`
}

type LeaderboardService struct {
	scoreRepo repository.ScoreRepository
	anchor    week.Anchor
}

func NewLeaderboardService(scoreRepo repository.ScoreRepository, anchor week.Anchor) *LeaderboardService {
	return &LeaderboardService{scoreRepo: scoreRepo, anchor: anchor}
}

// Standings returns the leaderboard of the week bucket containing t.
func (s *LeaderboardService) Standings(ctx context.Context, t time.Time) (*Leaderboard, error) {
	weekStart := s.anchor.Start(t)
	entries, err := s.scoreRepo.GetWeeklyStandings(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: standings for %s: %w", weekStart.Format(time.RFC3339), err)
	}
	return &Leaderboard{
		WeekStart: weekStart,
		WeekEnd:   s.anchor.Next(t),
		Entries:   entries,
	}, nil
}
