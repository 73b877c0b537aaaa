package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	plain := "testpassword123"

	hash, err := HashPassword(plain)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	if hash == "" {
		t.Error("Expected non-empty hash")
	}

	if hash == plain {
		t.Error("Hash should not equal plain text password")
	}
}

func TestComparePassword(t *testing.T) {
	plain := "testpassword123"

	hash, err := HashPassword(plain)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	// Test correct password
	if err := ComparePassword(hash, plain); err != nil {
		t.Errorf("ComparePassword() failed for correct password: %v", err)
	}

	// Test wrong password
	if err := ComparePassword(hash, "wrongpassword"); err == nil {
		t.Error("ComparePassword() should fail for wrong password")
	}
}

func TestCompareDummy_AlwaysMismatches(t *testing.T) {
	for _, plain := range []string{"", "budgeter-dummy", "anything"} {
		if err := CompareDummy(plain); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			t.Errorf("CompareDummy(%q) = %v, want ErrMismatchedHashAndPassword", plain, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		plain   string
		wantErr error
	}{
		{"", ErrPasswordTooShort},
		{"12345", ErrPasswordTooShort},
		{"123456", nil},
		{"a much longer password", nil},
		{strings.Repeat("p", 72), nil},
		{strings.Repeat("p", 80), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.plain)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePassword(%q) error = %v, want %v", tt.plain, err, tt.wantErr)
		}
	}

	// Everything ValidatePassword accepts must be hashable
	if _, err := HashPassword(strings.Repeat("p", 72)); err != nil {
		t.Errorf("HashPassword() at the length limit failed: %v", err)
	}
}
