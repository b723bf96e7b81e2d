package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"atcrank/internal/common"
	"atcrank/internal/domain/repository"
)

// RatingSource is the per-user contest rating feed.
type RatingSource interface {
	FetchRating(ctx context.Context, atcoderID string) (int, error)
}

// RatingService refreshes the stored contest rating of every active user. The
// rating feeds the logistic base score, so a stale rating only skews point
// amounts, never correctness; per-user failures are logged and skipped.
type RatingService struct {
	userRepo repository.UserRepository
	source   RatingSource
}

func NewRatingService(userRepo repository.UserRepository, source RatingSource) *RatingService {
	return &RatingService{userRepo: userRepo, source: source}
}

func (s *RatingService) SyncAll(ctx context.Context) error {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("rating: list active users: %w", err)
	}

	updated := 0
	for _, u := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rating, err := s.source.FetchRating(ctx, u.AtcoderID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				log.Printf("WARN: no rating history for %s, skipping", u.AtcoderID)
				continue
			}
			log.Printf("ERROR: fetching rating for %s: %v", u.AtcoderID, err)
			continue
		}
		if err := s.userRepo.UpsertRating(ctx, u.ID, rating); err != nil {
			log.Printf("ERROR: storing rating for %s: %v", u.AtcoderID, err)
			continue
		}
		updated++
	}
	log.Printf("INFO: rating sync updated %d of %d users", updated, len(users))
	return nil
}
