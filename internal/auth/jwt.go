package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session token")
)

// SessionClaims is the full session state: there is no server-side
// session table, the token carries everything Verify needs except the
// user's current generation (checked against the revocation store).
type SessionClaims struct {
	UserID     string `json:"sub"`
	Role       string `json:"role"`
	Generation int64  `json:"gen"`
	JTI        string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL reports how long issued tokens live; the session cookie's MaxAge
// must match it.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for userID. generation is the user's
// revocation counter at issue time.
func (m *Manager) Issue(userID, role string, generation int64) (string, error) {
	now := time.Now().UTC()

	claims := SessionClaims{
		UserID:     userID,
		Role:       role,
		Generation: generation,
		JTI:        uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry. Generation freshness is the
// caller's job (the auth middleware consults the revocation store).
func (m *Manager) Verify(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)

	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.UserID == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
