package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"articles/cmd/identity"
)

// TTL is the fixed lifetime of every issued token.
const TTL = 7 * 24 * time.Hour

// Claims is the identity payload embedded in every bearer token. It is built
// from the user record at issuance and never re-read from the store until the
// token is validated on a later request.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject id carried by the claims.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return id, nil
}

// Manager signs and verifies bearer tokens with one process-wide secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a Manager. The secret is required, loaded once at startup,
// and must never be logged or returned to clients.
func NewManager(secret string) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrConfig
	}
	return &Manager{secret: []byte(secret), ttl: TTL}, nil
}

// Issue signs a token for u, stamping issued-at and expiry from now.
func (m *Manager) Issue(u identity.User, now time.Time) (string, error) {
	now = now.UTC()

	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	if u.FullName != nil {
		claims.Name = *u.FullName
	}
	if u.AvatarURL != nil {
		claims.Avatar = *u.AvatarURL
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses and verifies a token: signature integrity first, then the
// time-based claims. Any failure collapses into ErrInvalidToken with the cause
// wrapped for diagnostics.
func (m *Manager) Validate(raw string, now time.Time) (Claims, error) {
	var claims Claims

	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
