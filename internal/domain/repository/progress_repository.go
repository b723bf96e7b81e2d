package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atcrank/internal/domain/model"
)

// ProgressRepository holds the per-user state the ingestion engine owns: the
// fetch watermark, the streak, and the per-problem cooldown timestamps. Writes
// accept an optional transaction so one credited event commits atomically.
type ProgressRepository interface {
	GetFetchState(ctx context.Context, userID int64, initialEpoch int64) (*model.FetchState, error)
	SeedFetchState(ctx context.Context, tx *sql.Tx, userID int64, initialEpoch int64) error
	UpdateFetchState(ctx context.Context, tx *sql.Tx, state *model.FetchState) error

	GetStreak(ctx context.Context, userID int64) (*model.Streak, error)
	SeedStreak(ctx context.Context, tx *sql.Tx, userID int64) error
	UpsertStreak(ctx context.Context, tx *sql.Tx, userID int64, currentStreak int, lastACDate string) error

	GetLastAcceptance(ctx context.Context, userID int64, problemID string) (*time.Time, error)
	UpsertLastAcceptance(ctx context.Context, tx *sql.Tx, userID int64, problemID string, at time.Time) error
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) GetFetchState(ctx context.Context, userID int64, initialEpoch int64) (*model.FetchState, error) {
	state := &model.FetchState{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT last_checked_epoch, last_submission_id FROM user_fetch_state WHERE user_id = $1`,
		userID,
	).Scan(&state.LastCheckedEpoch, &state.LastSubmissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			state.LastCheckedEpoch = initialEpoch
			return state, nil
		}
		return nil, fmt.Errorf("pgProgressRepository.GetFetchState: %w", err)
	}
	return state, nil
}

func (r *pgProgressRepository) SeedFetchState(ctx context.Context, tx *sql.Tx, userID int64, initialEpoch int64) error {
	query := `INSERT INTO user_fetch_state (user_id, last_checked_epoch)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, initialEpoch)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, initialEpoch)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.SeedFetchState: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) UpdateFetchState(ctx context.Context, tx *sql.Tx, state *model.FetchState) error {
	// GREATEST keeps the watermark monotonic even if a stale cycle tries to
	// write an older epoch.
	query := `INSERT INTO user_fetch_state (user_id, last_checked_epoch, last_submission_id)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET
	            last_checked_epoch = GREATEST(user_fetch_state.last_checked_epoch, EXCLUDED.last_checked_epoch),
	            last_submission_id = CASE
	              WHEN EXCLUDED.last_checked_epoch >= user_fetch_state.last_checked_epoch THEN EXCLUDED.last_submission_id
	              ELSE user_fetch_state.last_submission_id
	            END`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, state.UserID, state.LastCheckedEpoch, state.LastSubmissionID)
	} else {
		_, err = r.db.ExecContext(ctx, query, state.UserID, state.LastCheckedEpoch, state.LastSubmissionID)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.UpdateFetchState: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) GetStreak(ctx context.Context, userID int64) (*model.Streak, error) {
	streak := &model.Streak{UserID: userID}
	var lastACDate sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT current_streak, last_ac_date FROM streaks WHERE user_id = $1`,
		userID,
	).Scan(&streak.CurrentStreak, &lastACDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return streak, nil
		}
		return nil, fmt.Errorf("pgProgressRepository.GetStreak: %w", err)
	}
	streak.LastACDate = lastACDate.String
	return streak, nil
}

func (r *pgProgressRepository) SeedStreak(ctx context.Context, tx *sql.Tx, userID int64) error {
	query := `INSERT INTO streaks (user_id, current_streak) VALUES ($1, 0)
	          ON CONFLICT (user_id) DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.SeedStreak: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) UpsertStreak(ctx context.Context, tx *sql.Tx, userID int64, currentStreak int, lastACDate string) error {
	query := `INSERT INTO streaks (user_id, current_streak, last_ac_date)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET
	            current_streak = EXCLUDED.current_streak,
	            last_ac_date = EXCLUDED.last_ac_date`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, currentStreak, lastACDate)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, currentStreak, lastACDate)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.UpsertStreak: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) GetLastAcceptance(ctx context.Context, userID int64, problemID string) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_ac_at FROM user_problem_last_ac WHERE user_id = $1 AND problem_id = $2`,
		userID, problemID,
	).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgProgressRepository.GetLastAcceptance: %w", err)
	}
	return &at, nil
}

func (r *pgProgressRepository) UpsertLastAcceptance(ctx context.Context, tx *sql.Tx, userID int64, problemID string, at time.Time) error {
	query := `INSERT INTO user_problem_last_ac (user_id, problem_id, last_ac_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET last_ac_at = EXCLUDED.last_ac_at`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, problemID, at)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, problemID, at)
	}
	if err != nil {
		return fmt.Errorf("pgProgressRepository.UpsertLastAcceptance: %w", err)
	}
	return nil
}
