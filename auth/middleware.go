package auth

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"messenger/errors"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errors.ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", errors.ErrMissingToken
	}
	return token, nil
}

// Middleware rejects requests without a valid bearer token.
// Missing or malformed headers answer 401, invalid or expired tokens answer 403.
func Middleware(tokens *TokenService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				rejectRequest(w, http.StatusUnauthorized, "Missing or malformed token")
				return
			}

			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				log.Warn("Token rejected", "path", r.URL.Path, "error", err)
				status := http.StatusForbidden
				if stderrors.Is(err, errors.ErrMissingToken) {
					status = http.StatusUnauthorized
				}
				rejectRequest(w, status, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func rejectRequest(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
