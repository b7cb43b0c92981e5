package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"soundapi/internal/auth"
	"soundapi/internal/model"
	"soundapi/internal/repository"
)

// AuthResult is the outcome of a successful sign-up or sign-in.
type AuthResult struct {
	Token string        `json:"token"`
	User  model.UserRef `json:"user"`
}

// AuthService handles account creation and credential verification.
type AuthService interface {
	// SignUp creates a new account and issues a token. A taken username
	// surfaces as ErrConflict.
	SignUp(ctx context.Context, username, password string) (*AuthResult, error)

	// SignIn verifies credentials and issues a token. Unknown usernames and
	// wrong passwords are indistinguishable to the caller.
	SignIn(ctx context.Context, username, password string) (*AuthResult, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) SignUp(ctx context.Context, username, password string) (*AuthResult, error) {
	normalized, err := auth.NormalizeUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}

	stored, err := s.users.Create(ctx, &model.User{
		ID:             uuid.New().String(),
		Username:       normalized,
		HashedPassword: hashed,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username taken: %w", ErrConflict)
		}
		return nil, err
	}

	return s.issue(stored)
}

func (s *authService) SignIn(ctx context.Context, username, password string) (*AuthResult, error) {
	normalized, err := auth.NormalizeUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: *user.Ref()}, nil
}
