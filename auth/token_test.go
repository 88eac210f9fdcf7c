package auth

import (
	"messenger/domain"
	"messenger/errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-key-long-enough-for-hs256")

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time { return c.at }

func TestTokenService_GenerateThenVerify(t *testing.T) {
	req := require.New(t)
	clock := &fakeClock{at: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := NewTokenService(secret, time.Hour, clock.Now)

	// Given a token issued for alice
	token, err := tokens.GenerateToken("user-1", "alice@example.com", []string{"user"})
	req.NoError(err)

	// When it is verified before expiry
	identity, err := tokens.Verify(token)

	// Then the identity claim is returned
	req.NoError(err)
	req.Equal(domain.Identity("alice@example.com"), identity)

	claims, err := tokens.ValidateToken(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
}

func TestTokenService_Expired(t *testing.T) {
	req := require.New(t)
	clock := &fakeClock{at: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := NewTokenService(secret, time.Hour, clock.Now)

	token, err := tokens.GenerateToken("user-1", "alice@example.com", nil)
	req.NoError(err)

	// When the clock moves past the expiry
	clock.at = clock.at.Add(2 * time.Hour)
	_, err = tokens.Verify(token)

	// Then verification fails as expired
	req.ErrorIs(err, errors.ErrExpiredToken)
}

func TestTokenService_Missing(t *testing.T) {
	tokens := NewTokenService(secret, time.Hour, nil)

	_, err := tokens.Verify("   ")

	require.ErrorIs(t, err, errors.ErrMissingToken)
}

func TestTokenService_Malformed(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenService(secret, time.Hour, nil)
	other := NewTokenService([]byte("another-secret"), time.Hour, nil)

	foreign, err := other.GenerateToken("user-1", "alice@example.com", nil)
	req.NoError(err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong signature", foreign},
		{"wrong algorithm", signed(t, jwt.SigningMethodHS512, CustomClaims{
			Email: "alice@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
		{"missing identity", signed(t, jwt.SigningMethodHS256, CustomClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
		{"missing expiry", signed(t, jwt.SigningMethodHS256, CustomClaims{
			Email:            "alice@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			require.ErrorIs(t, err, errors.ErrMalformedToken)
		})
	}
}

func signed(t *testing.T, method jwt.SigningMethod, claims CustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}
