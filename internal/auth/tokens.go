package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aurorahealth/medscheduler/internal/users"
)

// Claims carry the authenticated user id and role inside the JWT.
type Claims struct {
	Role users.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HMAC access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer. The secret must be non-empty.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		panic("auth: jwt secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an access token for the given user.
func (t *TokenIssuer) Issue(userID string, role users.Role) (string, error) {
	if userID == "" {
		return "", errors.New("auth: userID required")
	}
	now := t.now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	if claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// TTL exposes the configured token lifetime for login responses.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
