package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Action token purposes.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposePasswordReset = "password_reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// actionClaims is the payload of a signed single-action link
type actionClaims struct {
	UserID  int64  `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// SignActionToken creates a signed, expiring token authorizing a single
// action (email verification, password reset) for a user. The token is
// stateless; the purpose claim prevents cross-use between link types.
func SignActionToken(secret string, userID int64, purpose string, ttl time.Duration) (string, error) {
	claims := actionClaims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseActionToken validates a signed action token and returns the user
// it was issued for. Expired, malformed or wrong-purpose tokens all
// report ErrInvalidToken.
func ParseActionToken(secret, tokenString, purpose string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &actionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*actionClaims)
	if !ok || claims.Purpose != purpose {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
