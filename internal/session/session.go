package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minigame-party/minigame_party/internal/clock"
)

// ErrInvalidToken covers every validation failure: bad signature, wrong
// signing method, malformed claims, expiry. Callers never receive a default
// identity on failure.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the authenticated principal bound into a session token.
type Identity struct {
	UserID   int64
	Username string
	Nickname string
	IsGuest  bool
}

// Claims carries the identity inside a signed JWT.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	IsGuest  bool   `json:"is_guest"`
}

// Manager issues and validates bearer tokens. Guest sessions get a shorter
// lifetime than registered ones, matching the guest retention window.
type Manager struct {
	secret   []byte
	userTTL  time.Duration
	guestTTL time.Duration
	clock    clock.Clock
}

// NewManager builds a session manager signing with the given HMAC secret.
func NewManager(secret string, userTTL, guestTTL time.Duration, clk clock.Clock) *Manager {
	return &Manager{secret: []byte(secret), userTTL: userTTL, guestTTL: guestTTL, clock: clk}
}

// Issue signs a token for the identity and returns it with its expiry.
func (m *Manager) Issue(id Identity) (string, time.Time, error) {
	now := m.clock.Now()
	ttl := m.userTTL
	if id.IsGuest {
		ttl = m.guestTTL
	}
	exp := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:   id.UserID,
		Username: id.Username,
		Nickname: id.Nickname,
		IsGuest:  id.IsGuest,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates a token and extracts the identity. It fails closed.
func (m *Manager) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Nickname: claims.Nickname,
		IsGuest:  claims.IsGuest,
	}, nil
}
