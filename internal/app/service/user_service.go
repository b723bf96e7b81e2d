package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"
	"atcrank/internal/domain/week"
)

// UserProfile is the read model behind the profile endpoint.
type UserProfile struct {
	User        model.User `json:"user"`
	Rating      int        `json:"rating"`
	Streak      int        `json:"streak"`
	WeeklyScore int        `json:"weekly_score"`
	Submissions int        `json:"submissions"`
}

// UserService manages the tracked competitors. Registration seeds the fetch
// watermark and the streak row in the same transaction as the user upsert, so
// a freshly registered user is immediately pollable.
type UserService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	scoreRepo    repository.ScoreRepository
	ratingSource RatingSource
	txRunner     repository.TxRunner
	anchor       week.Anchor
	initialEpoch int64
}

func NewUserService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	scoreRepo repository.ScoreRepository,
	ratingSource RatingSource,
	txRunner repository.TxRunner,
	anchor week.Anchor,
	initialEpoch int64,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		scoreRepo:    scoreRepo,
		ratingSource: ratingSource,
		txRunner:     txRunner,
		anchor:       anchor,
		initialEpoch: initialEpoch,
	}
}

// Register starts tracking an AtCoder id. Re-registering reactivates the
// existing user without resetting watermark, streak or history. The initial
// rating fetch is best effort; the periodic rating sync covers failures.
func (s *UserService) Register(ctx context.Context, atcoderID string) (*model.User, error) {
	if atcoderID == "" {
		return nil, fmt.Errorf("atcoder id is required: %w", common.ErrValidation)
	}

	var user *model.User
	err := s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = s.userRepo.Upsert(ctx, tx, atcoderID)
		if err != nil {
			return err
		}
		if err := s.progressRepo.SeedFetchState(ctx, tx, user.ID, s.initialEpoch); err != nil {
			return err
		}
		return s.progressRepo.SeedStreak(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("user: register %s: %w", atcoderID, err)
	}

	if s.ratingSource != nil {
		if rating, err := s.ratingSource.FetchRating(ctx, atcoderID); err == nil {
			if err := s.userRepo.UpsertRating(ctx, user.ID, rating); err != nil {
				log.Printf("WARN: storing initial rating for %s: %v", atcoderID, err)
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			log.Printf("WARN: fetching initial rating for %s: %v", atcoderID, err)
		}
	}
	return user, nil
}

// Deactivate stops polling a user. History, streak and watermark stay intact
// so re-registering resumes rather than restarts.
func (s *UserService) Deactivate(ctx context.Context, atcoderID string) error {
	user, err := s.userRepo.FindByAtcoderID(ctx, atcoderID)
	if err != nil {
		return fmt.Errorf("user: deactivate %s: %w", atcoderID, err)
	}
	if err := s.userRepo.Deactivate(ctx, user.ID); err != nil {
		return fmt.Errorf("user: deactivate %s: %w", atcoderID, err)
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, atcoderID string, now time.Time) (*UserProfile, error) {
	user, err := s.userRepo.FindByAtcoderID(ctx, atcoderID)
	if err != nil {
		return nil, fmt.Errorf("user: profile %s: %w", atcoderID, err)
	}

	rating, err := s.userRepo.GetRating(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user: profile %s: %w", atcoderID, err)
	}
	streak, err := s.progressRepo.GetStreak(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user: profile %s: %w", atcoderID, err)
	}
	weekly, err := s.scoreRepo.GetWeeklyScore(ctx, s.anchor.Start(now), user.ID)
	if err != nil {
		return nil, fmt.Errorf("user: profile %s: %w", atcoderID, err)
	}
	count, err := s.scoreRepo.CountSubmissions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user: profile %s: %w", atcoderID, err)
	}

	return &UserProfile{
		User:        *user,
		Rating:      rating,
		Streak:      streak.CurrentStreak,
		WeeklyScore: weekly,
		Submissions: count,
	}, nil
}
