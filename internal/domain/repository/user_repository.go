package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"
)

type UserRepository interface {
	// Upsert registers a tracked user. Re-registering an existing AtCoder id
	// reactivates the user and returns the original internal id, so history
	// stays attributable.
	Upsert(ctx context.Context, tx *sql.Tx, atcoderID string) (*model.User, error)
	Deactivate(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByAtcoderID(ctx context.Context, atcoderID string) (*model.User, error)
	ListActive(ctx context.Context) ([]model.User, error)

	GetRating(ctx context.Context, userID int64) (int, error)
	UpsertRating(ctx context.Context, userID int64, rating int) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Upsert(ctx context.Context, tx *sql.Tx, atcoderID string) (*model.User, error) {
	query := `INSERT INTO users (atcoder_id, is_active)
	          VALUES ($1, TRUE)
	          ON CONFLICT (atcoder_id) DO UPDATE SET is_active = TRUE, updated_at = CURRENT_TIMESTAMP
	          RETURNING id, atcoder_id, is_active, created_at, updated_at`

	user := &model.User{}
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, atcoderID)
	} else {
		row = r.db.QueryRowContext(ctx, query, atcoderID)
	}
	if err := row.Scan(&user.ID, &user.AtcoderID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("pgUserRepository.Upsert: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Deactivate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, atcoder_id, is_active, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) FindByAtcoderID(ctx context.Context, atcoderID string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, atcoder_id, is_active, created_at, updated_at FROM users WHERE atcoder_id = $1`, atcoderID)
}

func (r *pgUserRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.AtcoderID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.findOne: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, atcoder_id, is_active, created_at, updated_at FROM users WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListActive query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.AtcoderID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListActive scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListActive rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) GetRating(ctx context.Context, userID int64) (int, error) {
	var rating sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT rating FROM ratings WHERE user_id = $1`, userID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("pgUserRepository.GetRating: %w", err)
	}
	return int(rating.Int64), nil
}

func (r *pgUserRepository) UpsertRating(ctx context.Context, userID int64, rating int) error {
	query := `INSERT INTO ratings (user_id, rating, updated_at)
	          VALUES ($1, $2, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, userID, rating); err != nil {
		return fmt.Errorf("pgUserRepository.UpsertRating: %w", err)
	}
	return nil
}
