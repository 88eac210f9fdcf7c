package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"messenger/auth"
	"messenger/domain"
	"messenger/errors"
	"messenger/repositories"
)

type IAuthService interface {
	Login(ctx context.Context, email, password string) (Token, error)
	Register(ctx context.Context, email, password string) (string, error)
}

// AuthService is the identity store front: it owns password hashing and
// token issuance so repositories only ever see hashes.
type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenService
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenService) IAuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register returns the new user ID. Two signups racing for one email are
// settled by the repository, the loser gets errors.ErrUserAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	credentials := auth.NewCredentials(email, password)
	if err := auth.ValidateSignup(credentials); err != nil {
		return "", err
	}

	// Argon2 is the expensive step, run it only on valid input
	hash, err := auth.HashPassword(credentials.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}
	return s.users.CreateUser(ctx, credentials.Email, hash)
}

// Login answers errors.ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	credentials := auth.NewCredentials(email, password)

	user, err := s.users.GetUserByEmail(ctx, credentials.Email)
	switch {
	case stderrors.Is(err, errors.ErrStoreUnavailable):
		return "", err
	case err != nil:
		return "", errors.ErrInvalidCredentials
	}

	if match, err := auth.ComparePassword(credentials.Password, user.PasswordHash); err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, domain.Identity(user.Email), user.Roles)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrTokenGeneration, err)
	}
	return Token(token), nil
}
