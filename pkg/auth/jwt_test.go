package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSubject_ReadsUnverifiedToken(t *testing.T) {
	token, err := signToken("user-123", "some-secret-we-do-not-know", time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	sub, err := Subject(token)
	if err != nil {
		t.Fatalf("Expected subject, got error %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("Expected user-123, got %s", sub)
	}
}

func TestSubject_ExpiredTokenStillInspectable(t *testing.T) {
	token, err := signToken("user-1", "secret", -time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	if _, err := Subject(token); err != nil {
		t.Fatalf("Expected expired token to be inspectable, got %v", err)
	}
}

func TestSubject_Errors(t *testing.T) {
	if _, err := Subject("not-a-jwt"); err == nil {
		t.Fatal("Expected error for malformed token")
	}

	token, err := signToken("", "secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	if _, err := Subject(token); !errors.Is(err, ErrNoSubject) {
		t.Fatalf("Expected ErrNoSubject, got %v", err)
	}
}

// signToken builds a token shaped like the API's.
func signToken(sub, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
