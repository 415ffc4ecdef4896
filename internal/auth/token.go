// Package auth issues and verifies the signed bearer tokens that gate
// owner-scoped operations.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the authenticated user's id alongside the registered
// expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}

// TokenManager signs and verifies HS256 access tokens. The TTL is policy,
// not protocol: it is fixed at construction from configuration.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token whose payload carries userID and which
// expires after the manager's TTL.
func (m *TokenManager) Generate(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and returns the embedded user
// id. Malformed, expired, or wrongly-signed tokens all map to
// ErrInvalidToken; callers never learn which.
func (m *TokenManager) Verify(tokenString string) (uint, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})

	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
