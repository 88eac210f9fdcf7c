package auth

import (
	"log/slog"
	"messenger/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	req := require.New(t)

	token, err := BearerToken("Bearer abc.def.ghi")
	req.NoError(err)
	req.Equal("abc.def.ghi", token)

	_, err = BearerToken("")
	req.Error(err)
	_, err = BearerToken("Basic dXNlcjpwYXNz")
	req.Error(err)
	_, err = BearerToken("Bearer ")
	req.Error(err)
}

func TestMiddleware(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	clock := &fakeClock{at: time.Now()}
	tokens := NewTokenService(secret, time.Hour, clock.Now)

	var seen domain.Identity
	protected := Middleware(tokens, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, err := tokens.GenerateToken("user-1", "alice@example.com", nil)
	require.NoError(t, err)
	expired, err := NewTokenService(secret, time.Hour, func() time.Time {
		return clock.at.Add(-3 * time.Hour)
	}).GenerateToken("user-1", "alice@example.com", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusForbidden},
		{"valid token", "Bearer " + valid, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, r)

			require.Equal(t, tt.want, w.Code)
		})
	}
	require.Equal(t, domain.Identity("alice@example.com"), seen)
}
