package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atcrank/internal/domain/model"
)

// ScoreRepository owns the append-only submission log and the weekly
// aggregates. Weekly additions are a single SQL upsert-with-add, so concurrent
// cycles for different users never lose updates to the same week bucket.
type ScoreRepository interface {
	InsertSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	AddWeeklyScore(ctx context.Context, tx *sql.Tx, weekStart time.Time, userID int64, delta int) error
	GetWeeklyScore(ctx context.Context, weekStart time.Time, userID int64) (int, error)
	GetWeeklyStandings(ctx context.Context, weekStart time.Time) ([]model.LeaderboardEntry, error)
	CountSubmissions(ctx context.Context, userID int64) (int, error)
}

type pgScoreRepository struct {
	db *sql.DB
}

func NewPgScoreRepository(db *sql.DB) ScoreRepository {
	return &pgScoreRepository{db: db}
}

func (r *pgScoreRepository) InsertSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, submitted_at, score_base, streak_mult, score_final)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.SubmittedAt, sub.ScoreBase, sub.StreakMult, sub.ScoreFinal)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.SubmittedAt, sub.ScoreBase, sub.StreakMult, sub.ScoreFinal)
	}
	if err != nil {
		return fmt.Errorf("pgScoreRepository.InsertSubmission: %w", err)
	}
	return nil
}

func (r *pgScoreRepository) AddWeeklyScore(ctx context.Context, tx *sql.Tx, weekStart time.Time, userID int64, delta int) error {
	query := `INSERT INTO weekly_scores (week_start, user_id, score, updated_at)
	          VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	          ON CONFLICT (week_start, user_id) DO UPDATE SET
	            score = weekly_scores.score + EXCLUDED.score,
	            updated_at = CURRENT_TIMESTAMP`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, weekStart, userID, delta)
	} else {
		_, err = r.db.ExecContext(ctx, query, weekStart, userID, delta)
	}
	if err != nil {
		return fmt.Errorf("pgScoreRepository.AddWeeklyScore: %w", err)
	}
	return nil
}

func (r *pgScoreRepository) GetWeeklyScore(ctx context.Context, weekStart time.Time, userID int64) (int, error) {
	var score int
	err := r.db.QueryRowContext(ctx,
		`SELECT score FROM weekly_scores WHERE week_start = $1 AND user_id = $2`,
		weekStart, userID,
	).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("pgScoreRepository.GetWeeklyScore: %w", err)
	}
	return score, nil
}

func (r *pgScoreRepository) GetWeeklyStandings(ctx context.Context, weekStart time.Time) ([]model.LeaderboardEntry, error) {
	query := `SELECT w.user_id, u.atcoder_id, w.score, w.updated_at
	          FROM weekly_scores w
	          LEFT JOIN users u ON w.user_id = u.id
	          WHERE w.week_start = $1
	          ORDER BY w.score DESC, w.updated_at ASC`
	rows, err := r.db.QueryContext(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("pgScoreRepository.GetWeeklyStandings query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.AtcoderID, &e.Score, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgScoreRepository.GetWeeklyStandings scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgScoreRepository.GetWeeklyStandings rows.Err: %w", err)
	}
	return entries, nil
}

func (r *pgScoreRepository) CountSubmissions(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgScoreRepository.CountSubmissions: %w", err)
	}
	return n, nil
}
