package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (m *JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Issue signs {uid, role} with an absolute expiry of TTL from now.
func (m *JWTManager) Issue(userID, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse verifies signature and expiry. Any failure yields ErrInvalidToken wrapping the cause.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
