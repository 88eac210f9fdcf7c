package auth

import (
	stderrors "errors"
	"fmt"
	"messenger/domain"
	"messenger/errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "messenger"

// Verifier turns a bearer credential into the identity it was issued for.
type Verifier interface {
	Verify(tokenString string) (domain.Identity, error)
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the claim messages are routed by.
func (c CustomClaims) Identity() domain.Identity {
	return domain.Identity(c.Email)
}

// TokenService signs and validates HS256 tokens.
// Time is injected so expiry can be tested without a real clock.
type TokenService struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenService(secret []byte, duration time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: secret, duration: duration, now: now}
}

// GenerateToken creates a signed JWT for a specific user.
func (s *TokenService) GenerateToken(userID string, email domain.Identity, roles []string) (string, error) {
	issuedAt := s.now()
	claims := &CustomClaims{
		UserID: userID,
		Email:  email.String(),
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email.String(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
// Errors are classified as missing, malformed or expired.
func (s *TokenService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.ErrMissingToken
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", errors.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedToken, err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, errors.ErrMalformedToken
	}
	return claims, nil
}

func (s *TokenService) Verify(tokenString string) (domain.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Identity(), nil
}
