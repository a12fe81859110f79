// Package admin is the password-gated back office: listings, CSV export and
// verification-code batches. Unlike the storefront, it has no local-only
// mode; an unconfigured gateway is a blocking error.
package admin

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrLoginDisabled = errors.New("admin: no password configured, login disabled")
	ErrBadPassword   = errors.New("admin: wrong password")
)

// Auth validates the shared admin password server-side and issues short
// lived session tokens. The password never reaches any client bundle.
type Auth struct {
	Password string
	Secret   []byte
	TTL      time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Login compares in constant time and returns a signed session token.
func (a *Auth) Login(password string) (string, error) {
	if a.Password == "" {
		return "", ErrLoginDisabled
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) != 1 {
		return "", ErrBadPassword
	}
	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
			Issuer:    "storefront",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// Validate checks a bearer token from the admin routes.
func (a *Auth) Validate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}
