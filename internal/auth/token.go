package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// DefaultTokenTTL matches the original session length: tokens are valid for
// one day and there is no refresh or revocation.
const DefaultTokenTTL = 24 * time.Hour

// TokenManager issues and verifies session tokens binding a user id and an
// expiry. Handlers depend on this interface so tests can swap in a
// deterministic implementation.
type TokenManager interface {
	Issue(userID uint) (string, error)
	Verify(token string) (uint, error)
}

type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// JWTManager signs HS256 tokens with a shared secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager builds a manager signing tokens valid for ttl. A zero ttl
// falls back to DefaultTokenTTL; negative values are kept as-is so tests can
// mint already-expired tokens.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

func (m *JWTManager) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) Verify(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// StaticTokenManager is a deterministic TokenManager for tests: tokens are
// "token-<id>" with no signing or expiry.
type StaticTokenManager struct{}

func (StaticTokenManager) Issue(userID uint) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

func (StaticTokenManager) Verify(token string) (uint, error) {
	rest, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
