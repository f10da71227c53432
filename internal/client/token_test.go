package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestReadIdentity(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "42",
		"username": "steve",
		"exp":      exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	id, err := ReadIdentity(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.DisplayName() != "steve" || id.Subject != "42" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, id.ExpiresAt)
	}
	if id.Expired(time.Now()) {
		t.Fatalf("expected token to be valid")
	}
	if !id.Expired(exp.Add(time.Second)) {
		t.Fatalf("expected token to be expired after exp")
	}
}

func TestReadIdentityOpaqueToken(t *testing.T) {
	if _, err := ReadIdentity("not-a-jwt"); err == nil {
		t.Fatalf("expected error for opaque token")
	}
}

func TestIdentityDisplayNameFallsBackToSubject(t *testing.T) {
	id := Identity{Subject: "alex"}
	if id.DisplayName() != "alex" {
		t.Fatalf("expected subject fallback, got %q", id.DisplayName())
	}
}
