package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{
		Email:            "seeker@example.com",
		Role:             "jobseeker",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "jobseeker" || claims.Email != "seeker@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected default expiry")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "one")
	token, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	t.Setenv("JWT_SECRET", "two")
	if _, err := VerifyJWT(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "test-secret")
	past := time.Now().Add(-time.Hour)
	token, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(past),
	}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Fatalf("expected mismatch")
	}
	if CheckPassword("", "anything") {
		t.Fatalf("empty hash must not match")
	}
}
