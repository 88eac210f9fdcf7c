package auth

import (
	"messenger/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassword_HashThenCompare(t *testing.T) {
	req := require.New(t)

	// Given a stored hash
	hash, err := HashPassword("MyPassw0rdIsS0Safe!")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	// Then only the original password matches it
	match, err := ComparePassword("MyPassw0rdIsS0Safe!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MyPassw0rdIsS0Safe?", hash)
	req.NoError(err)
	req.False(match)

	// And two hashes of one password differ by their salt
	other, err := HashPassword("MyPassw0rdIsS0Safe!")
	req.NoError(err)
	req.NotEqual(hash, other)
}

func TestPassword_CompareRejectsForeignHashes(t *testing.T) {
	for _, encoded := range []string{
		"not-an-argon-hash",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=16$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=3,p=2$c2FsdA$aGFzaA",
	} {
		match, err := ComparePassword("whatever", encoded)
		require.Error(t, err, encoded)
		require.False(t, match)
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr string
	}{
		{"valid", "test@example.com", "ComplexPass123!", ""},
		{"trimmed email", "  test@example.com ", "ComplexPass123!", ""},
		{"invalid email", "notanemail", "ComplexPass123!", "email"},
		{"too short", "test@example.com", "Short1!", "password"},
		{"too long", "test@example.com", "Aa1!" + strings.Repeat("a", 125), "password"},
		{"no digit", "test@example.com", "NoDigitPassword!", "a digit"},
		{"no symbol", "test@example.com", "NoSpecialChar123", "a symbol"},
		{"lowercase only", "test@example.com", "nouppercase1234", "an uppercase letter, a symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(NewCredentials(tt.email, tt.pass))
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errors.ErrInvalidSignup)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for b.Loop() {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
