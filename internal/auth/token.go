// Package auth issues and verifies the bearer tokens protecting the API and
// provides the Fiber middleware that enforces them.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired means the token elapsed its lifetime.
	ErrExpired = errors.New("token expired")
	// ErrMalformed means the token is not a parseable JWT.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid means the signature does not match the secret.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenStructure means the payload is not an object carrying an id.
	ErrTokenStructure = errors.New("token payload missing id")
)

// TokenService signs and verifies HS256 tokens embedding the user id.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{Secret: []byte(secret), TTL: ttl}
}

// Issue produces a signed token for userID expiring after the configured
// lifetime.
func (s *TokenService) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(s.TTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// Verify validates the token and returns the embedded user id. Failure modes
// are distinguished so callers can map them to the right response.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrMalformed
		default:
			return "", ErrSignatureInvalid
		}
	}
	if !token.Valid {
		return "", ErrSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenStructure
	}
	id, ok := claims["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", ErrTokenStructure
	}
	return id, nil
}
