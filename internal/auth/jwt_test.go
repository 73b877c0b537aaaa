package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	m := NewTokenManager("test-secret-key", "budgeter", 24*time.Hour)

	uid := 1
	email := "test@example.com"
	role := "admin"
	now := time.Now()

	// Generate token
	token, expireAt, err := m.Generate(uid, email, role, now)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if token == "" {
		t.Error("Expected non-empty token")
	}
	if !expireAt.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("Expected expireAt %v, got %v", now.Add(24*time.Hour), expireAt)
	}

	// Parse token
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	// Verify claims
	if claims.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, claims.UID)
	}

	if claims.Email != email {
		t.Errorf("Expected email %s, got %s", email, claims.Email)
	}

	if claims.Role != role {
		t.Errorf("Expected role %s, got %s", role, claims.Role)
	}

	if claims.Issuer != "budgeter" {
		t.Errorf("Expected issuer budgeter, got %s", claims.Issuer)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := NewTokenManager("test-secret-key", "budgeter", time.Hour)

	// Test with invalid token
	_, err := m.Parse("invalid.token.string")
	if err == nil {
		t.Error("Parse() should fail for invalid token")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret-key", "budgeter", time.Hour)

	// Generate token that's already expired
	token, _, err := m.Generate(1, "test@example.com", "admin", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	// Try to parse expired token
	_, err = m.Parse(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Parse() should fail with ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-1", "budgeter", time.Hour).Generate(1, "test@example.com", "admin", time.Now())
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	// Try to parse with different secret
	_, err = NewTokenManager("secret-2", "budgeter", time.Hour).Parse(token)
	if err == nil {
		t.Error("Parse() should fail when secret is different")
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	token, _, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(1, "test@example.com", "user", time.Now())
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if _, err := NewTokenManager("secret", "budgeter", time.Hour).Parse(token); err == nil {
		t.Error("Parse() should fail for a foreign issuer")
	}
}

func TestGenerateToken_UninitializedSecret(t *testing.T) {
	_, _, err := NewTokenManager("", "budgeter", time.Hour).Generate(1, "test@example.com", "admin", time.Now())
	if err == nil {
		t.Error("Generate() should fail when secret is not initialized")
	}
}
