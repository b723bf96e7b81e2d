package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"
)

type ProblemRepository interface {
	// UpsertBatch merges one catalog sync into the problems table. The
	// ingestion engine only ever reads from this table.
	UpsertBatch(ctx context.Context, problems []model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	Count(ctx context.Context) (int, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) UpsertBatch(ctx context.Context, problems []model.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO problems (problem_id, contest_id, title, slug, difficulty_raw, difficulty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (problem_id) DO UPDATE SET
		  contest_id = EXCLUDED.contest_id,
		  title = EXCLUDED.title,
		  slug = EXCLUDED.slug,
		  difficulty_raw = EXCLUDED.difficulty_raw,
		  difficulty = EXCLUDED.difficulty,
		  updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpsertBatch prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range problems {
		if _, err := stmt.ExecContext(ctx, p.ID, p.ContestID, p.Title, p.Slug, p.DifficultyRaw, p.Difficulty); err != nil {
			return fmt.Errorf("pgProblemRepository.UpsertBatch exec for problem %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgProblemRepository.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT problem_id, contest_id, title, slug, difficulty_raw, difficulty, updated_at
	          FROM problems WHERE problem_id = $1`
	p := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.ContestID, &p.Title, &p.Slug, &p.DifficultyRaw, &p.Difficulty, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgProblemRepository.Count: %w", err)
	}
	return n, nil
}
