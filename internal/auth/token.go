// internal/auth/token.go
//
// Admin session tokens.
//
/*
Context
--------
The admin panel has a single configured account.  Login mints a signed
HS256 JWT carrying the email and an "admin" role, delivered both as an
httpOnly cookie and in the JSON body so API clients can use a Bearer
header instead.
*/
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the admin session cookie.
const CookieName = "admin_token"

// TokenTTL is the admin session lifetime.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for expired, malformed, or mis-signed
// tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the admin token payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken mints a 24 h admin token for the given email.
func GenerateToken(secret, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates an admin token.
func VerifyToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != "admin" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckCredentials compares a login attempt against the configured
// admin account in constant time.
func CheckCredentials(wantEmail, wantPassword, email, password string) bool {
	e := subtle.ConstantTimeCompare([]byte(wantEmail), []byte(email))
	p := subtle.ConstantTimeCompare([]byte(wantPassword), []byte(password))
	return e == 1 && p == 1
}
