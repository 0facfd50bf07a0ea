package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors what the GUARDIÃO API puts in its access tokens: the user id
// in "sub" plus an expiry.
type Claims struct {
	jwt.RegisteredClaims
}

var ErrNoSubject = errors.New("token has no subject")

// Inspect decodes an access token without verifying its signature. The
// result is only used to label logs.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Subject returns the "sub" claim of an access token.
func Subject(tokenString string) (string, error) {
	claims, err := Inspect(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
