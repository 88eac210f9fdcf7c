package services

import (
	"context"
	"messenger/auth"
	"messenger/domain"
	"messenger/errors"
	"messenger/mocks"
	"messenger/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const strongPassword = "ComplexPass123!"

func newAuthService(t *testing.T) (IAuthService, *mocks.MockIUserRepository, *auth.TokenService) {
	t.Helper()
	users := mocks.NewMockIUserRepository(gomock.NewController(t))
	tokens := auth.NewTokenService([]byte("secret"), 24*time.Hour, nil)
	return NewAuthService(users, tokens), users, tokens
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hash, never the password", func(t *testing.T) {
		req := require.New(t)
		svc, users, _ := newAuthService(t)

		// Given a repository accepting alice
		users.EXPECT().
			CreateUser(gomock.Any(), "alice@example.com", gomock.Not(strongPassword)).
			Return("user-1", nil)

		// When she signs up with surrounding spaces in her email
		userID, err := svc.Register(ctx, "  alice@example.com ", strongPassword)

		// Then the trimmed email is stored
		req.NoError(err)
		req.Equal("user-1", userID)
	})

	t.Run("rejects weak input before hashing", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		for _, c := range []struct{ email, password string }{
			{"alice@example.com", "simple"},
			{"not-an-email", strongPassword},
			{"alice@example.com", "nouppercase123!"},
		} {
			_, err := svc.Register(ctx, c.email, c.password)
			require.ErrorIs(t, err, errors.ErrInvalidSignup)
		}
	})

	t.Run("propagates a taken email", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.EXPECT().
			CreateUser(gomock.Any(), "bob@example.com", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists)

		_, err := svc.Register(ctx, "bob@example.com", strongPassword)

		require.ErrorIs(t, err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword(strongPassword)
	require.NoError(t, err)
	alice := repositories.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash, Roles: []string{"user"}}

	t.Run("issues a token carrying the identity", func(t *testing.T) {
		req := require.New(t)
		svc, users, tokens := newAuthService(t)
		users.EXPECT().GetUserByEmail(gomock.Any(), alice.Email).Return(alice, nil)

		token, err := svc.Login(ctx, alice.Email, strongPassword)

		req.NoError(err)
		claims, err := tokens.ValidateToken(token.String())
		req.NoError(err)
		req.Equal(alice.ID, claims.UserID)
		req.Equal(domain.Identity(alice.Email), claims.Identity())
	})

	tests := []struct {
		name     string
		user     repositories.User
		findErr  error
		password string
		want     error
	}{
		{"wrong password", alice, nil, "WrongPassword123!", errors.ErrInvalidCredentials},
		{"unknown user", repositories.User{}, errors.ErrNotFound, strongPassword, errors.ErrInvalidCredentials},
		{"store down", repositories.User{}, errors.ErrStoreUnavailable, strongPassword, errors.ErrStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _ := newAuthService(t)
			users.EXPECT().GetUserByEmail(gomock.Any(), alice.Email).Return(tt.user, tt.findErr)

			token, err := svc.Login(ctx, alice.Email, tt.password)

			require.ErrorIs(t, err, tt.want)
			require.Empty(t, token)
		})
	}
}
