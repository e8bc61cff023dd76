// Package auth validates the bearer tokens protecting the suggestion API.
// The service issues no tokens of its own; callers present tokens minted by
// the surrounding ERP deployment with the shared secret.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/config"
)

var (
	// ErrInvalidToken is returned for malformed, unsigned or otherwise
	// unacceptable tokens
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the registered JWT claims of a verified token
type Claims struct {
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 bearer tokens against the shared secret.
// An empty secret disables verification entirely (development mode).
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a TokenVerifier from the auth configuration
func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Enabled reports whether token verification is configured
func (v *TokenVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify parses and validates a token string
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign mints a token with the verifier's secret and issuer. Used by tests
// and the local development tooling.
func (v *TokenVerifier) Sign(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
