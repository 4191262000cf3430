package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager signs and verifies admin session tokens (HS256).
type Manager struct{ secret []byte }

func NewManager(secret string) *Manager { return &Manager{secret: []byte(secret)} }

type sessionClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

func (m *Manager) Sign(username string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify returns the subject and roles of a valid token.
func (m *Manager) Verify(tok string) (string, []string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", nil, err
	}
	if !parsed.Valid {
		return "", nil, errors.New("bad token")
	}
	return claims.Subject, claims.Roles, nil
}
