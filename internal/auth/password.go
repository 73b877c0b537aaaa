package auth

import (
	"errors"
	"fmt"
	"sync"

	"budgeter/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

// Errors returned by ValidatePassword
var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", validator.MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d bytes long", validator.MaxPasswordBytes)
)

// Cost is the bcrypt work factor used for new hashes
var Cost = bcrypt.DefaultCost

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// ValidatePassword checks password policy. Passwords longer than bcrypt's
// input limit are rejected here rather than failing at hash time.
func ValidatePassword(plain string) error {
	err := validator.ValidatePassword(plain)
	if err == nil {
		return nil
	}
	var re *validator.RuleError
	if errors.As(err, &re) && re.Tag == "maxbytes" {
		return ErrPasswordTooLong
	}
	return ErrPasswordTooShort
}

// HashPassword hashes a plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with a plain text password
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// CompareDummy spends the same work as ComparePassword against a throwaway
// hash, so unknown accounts take as long to reject as wrong passwords.
// It always returns bcrypt.ErrMismatchedHashAndPassword.
func CompareDummy(plain string) error {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("budgeter-dummy-password"), Cost)
	})
	if err := bcrypt.CompareHashAndPassword(dummyHash, []byte(plain)); err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return err
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
