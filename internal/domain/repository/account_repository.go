package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) AccountRepository {
	return &pgAccountRepository{db: db}
}

func (r *pgAccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (id, username, email, hashed_password, role)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, account.ID, account.Username, account.Email, account.HashedPassword, account.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("account with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAccountRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *pgAccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, `WHERE username = $1`, username)
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *pgAccountRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Account, error) {
	query := `SELECT id, username, email, hashed_password, role, created_at, updated_at FROM accounts ` + where
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.Email, &account.HashedPassword, &account.Role, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.findOne: %w", err)
	}
	return account, nil
}
