package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/listing-pipeline/internal/server/middleware"
)

// DefaultTokenTTL is the lifetime of issued reviewer tokens.
const DefaultTokenTTL = 24 * time.Hour

// ReviewerClaims identifies a reviewer. The subject is the reviewer name
// recorded on review decisions.
type ReviewerClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 reviewer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ middleware.TokenValidator = (*TokenService)(nil)

// NewTokenService creates a token service. It returns nil when secret is
// empty, which leaves the review endpoint unauthenticated.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken signs a token for reviewer.
func (s *TokenService) GenerateToken(reviewer string) (string, error) {
	if reviewer == "" {
		return "", fmt.Errorf("reviewer is required")
	}
	now := s.now()
	claims := &ReviewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reviewer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies a token and returns the reviewer it was issued to.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token string is empty")
	}

	claims := &ReviewerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("malformed token: %w", err)
		}
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
