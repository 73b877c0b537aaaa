// Package validator checks account fields with the go-playground rules gin
// binds request bodies with. The same tags are used on the HTTP request
// structs and by the services, so a rule holds whichever path a value takes.
package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	playground "github.com/go-playground/validator/v10"
)

// Account field limits, matching the users table column widths
const (
	MaxEmailLength    = 255
	MaxNameLength     = 128
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72
)

// Rule sets, also used as binding tags on request bodies
const (
	EmailRules    = "required,email,max=255"
	NameRules     = "required,max=128"
	PasswordRules = "required,min=6,maxbytes=72"
)

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New()
	if err := RegisterRules(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterRules adds the custom account tags to v. Call it on gin's binding
// engine before binding request bodies that use PasswordRules.
func RegisterRules(v *playground.Validate) error {
	return v.RegisterValidation("maxbytes", maxBytes)
}

// maxbytes=N limits the encoded length of a string, unlike max which counts
// runes
func maxBytes(fl playground.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// RuleError reports the first rule a field failed
type RuleError struct {
	Field string
	Tag   string
	Param string
}

func (e *RuleError) Error() string {
	return e.Field + " " + describe(e.Tag, e.Param)
}

// ValidateEmail checks an email address, ignoring surrounding spaces
func ValidateEmail(email string) error {
	return check("email", strings.TrimSpace(email), EmailRules)
}

// ValidateName checks a display name, ignoring surrounding spaces
func ValidateName(name string) error {
	return check("name", strings.TrimSpace(name), NameRules)
}

// ValidatePassword checks a plain text password
func ValidatePassword(password string) error {
	return check("password", password, PasswordRules)
}

func check(field, value, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var errs playground.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return &RuleError{Field: field, Tag: errs[0].Tag(), Param: errs[0].Param()}
	}
	return err
}

// Describe turns a binding error into a client message. ok is false when err
// is not a rule violation, e.g. malformed JSON.
func Describe(err error) (msg string, ok bool) {
	var errs playground.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, lowerFirst(fe.Field())+" "+describe(fe.Tag(), fe.Param()))
	}
	return strings.Join(parts, "; "), true
}

func describe(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", param)
	default:
		return "failed " + tag
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
