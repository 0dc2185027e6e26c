package admin

import (
	"errors"
	"time"

	"coderoom/core"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the admin session cookie.
const CookieName = "coderoom_admin"

const sessionLifetime = 12 * time.Hour

// SessionClaims carries the admin identity inside a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name       string `json:"name"`
	SuperAdmin bool   `json:"superAdmin"`
}

// Sessions issues and verifies admin session tokens.
type Sessions struct {
	secret []byte
}

// NewSessions creates a session manager signing with the given secret.
func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret)}
}

// Issue creates a signed session token for an admin.
func (s *Sessions) Issue(admin core.AdminUser) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session secret is not configured")
	}
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
		},
		Name:       admin.Name,
		SuperAdmin: admin.SuperAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a session token and returns the admin identity it carries.
func (s *Sessions) Parse(token string) (core.AdminUser, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return core.AdminUser{}, err
	}
	if !parsed.Valid {
		return core.AdminUser{}, errors.New("invalid session token")
	}
	return core.NewAdminUser(claims.Name, claims.SuperAdmin), nil
}
