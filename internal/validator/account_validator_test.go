package validator

import (
	"errors"
	"strings"
	"testing"

	playground "github.com/go-playground/validator/v10"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"user@example.com", false},
		{"first.last+tag@sub.example.co", false},
		{"o'brien@example.com", false},
		{"用户@例子.广告", false},
		{"  padded@example.com  ", false},
		{"", true},
		{"no-at-sign", true},
		{"@example.com", true},
		{"user@", true},
		{strings.Repeat("a", 250) + "@example.com", true},
	}
	for _, tt := range tests {
		if err := ValidateEmail(tt.email); (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("记账用户"); err != nil {
		t.Errorf("ValidateName() unexpected error: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Error("Expected error for blank name")
	}
	// max counts runes, not bytes
	if err := ValidateName(strings.Repeat("名", MaxNameLength)); err != nil {
		t.Errorf("Expected %d runes to be accepted, got %v", MaxNameLength, err)
	}
	if err := ValidateName(strings.Repeat("名", MaxNameLength+1)); err == nil {
		t.Error("Expected error for overlong name")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantTag  string
	}{
		{"empty", "", "required"},
		{"too short", "12345", "min"},
		{"minimum", "123456", ""},
		{"bcrypt limit", strings.Repeat("a", MaxPasswordBytes), ""},
		{"80 bytes", strings.Repeat("a", 80), "maxbytes"},
		// 30 runes but 90 bytes
		{"multibyte over limit", strings.Repeat("密", 30), "maxbytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("ValidatePassword() unexpected error: %v", err)
				}
				return
			}
			var re *RuleError
			if !errors.As(err, &re) || re.Tag != tt.wantTag {
				t.Errorf("ValidatePassword() error = %v, want tag %q", err, tt.wantTag)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	v := playground.New()
	if err := RegisterRules(v); err != nil {
		t.Fatalf("RegisterRules() failed: %v", err)
	}
	type body struct {
		Email    string `validate:"required,email,max=255"`
		Password string `validate:"required,min=6,maxbytes=72"`
	}

	msg, ok := Describe(v.Struct(body{Email: "nope", Password: strings.Repeat("x", 80)}))
	if !ok {
		t.Fatal("Expected a rule violation")
	}
	want := "email must be a valid email address; password must be at most 72 bytes"
	if msg != want {
		t.Errorf("Describe() = %q, want %q", msg, want)
	}

	if _, ok := Describe(errors.New("unexpected EOF")); ok {
		t.Error("Expected a non-validation error to be reported as such")
	}
}
