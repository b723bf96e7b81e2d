package service

import (
	"context"
	"fmt"
	"strings"

	"atcrank/internal/common"
	"atcrank/internal/common/security"
	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"

	"github.com/google/uuid"
)

// AuthService issues API credentials. Accounts are operators of this service,
// not tracked competitors.
type AuthService struct {
	accountRepo repository.AccountRepository
}

func NewAuthService(accountRepo repository.AccountRepository) *AuthService {
	return &AuthService{accountRepo: accountRepo}
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, fmt.Errorf("username, email and a password of at least 8 characters are required: %w", common.ErrValidation)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hashing password: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           model.RoleUser,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("auth: creating account: %w", err)
	}
	return account, nil
}

// Login verifies the credentials and returns a signed token. A missing account
// and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}
	if !security.CheckPasswordHash(password, account.HashedPassword) {
		return "", nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	token, err := security.GenerateToken(account.ID, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("auth: signing token: %w", err)
	}
	return token, account, nil
}
