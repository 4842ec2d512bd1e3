// Package auth issues and verifies the bearer credentials of the API and
// propagates the verified subject identity through the request context.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	// UserIDKey carries the verified subject identifier.
	UserIDKey contextKey = "user_id"
	// UserMobileKey carries the subject's login mobile number.
	UserMobileKey contextKey = "user_mobile"
)

// Claims is the token payload: the user's surrogate key and login mobile.
type Claims struct {
	UserID int64  `json:"id"`
	Mobile string `json:"mobile"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies HS256 tokens with a fixed TTL.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given user.
func (i *TokenIssuer) Issue(userID int64, mobile string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Mobile: mobile,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses and validates a token string, returning its claims.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// UserIDFromContext returns the verified subject identifier, or 0 when the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(UserIDKey).(int64)
	return id
}

// MobileFromContext returns the subject's mobile number from the context.
func MobileFromContext(ctx context.Context) string {
	m, _ := ctx.Value(UserMobileKey).(string)
	return m
}
