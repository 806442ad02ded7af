package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id: %q", claims.UserID)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id to be set")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := Parse(token, "secret"); !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestSuccessiveTokensDiffer(t *testing.T) {
	first, err := GenerateToken("user-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}
	second, err := GenerateToken("user-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for successive mints")
	}
}
