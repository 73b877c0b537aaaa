package ban

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the caller lacks the admin role
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is returned for malformed admin requests
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when the target user does not exist
	ErrNotFound = errors.New("user not found")

	// ErrAuthDenied is the generic authentication failure. Both denial
	// reasons below wrap it and must be reported to clients identically.
	ErrAuthDenied = errors.New("authentication denied")
	// ErrAuthDeniedBanned is returned when credentials are valid but the
	// account carries an active ban
	ErrAuthDeniedBanned = fmt.Errorf("%w: account banned", ErrAuthDenied)
	// ErrAuthDeniedBadCredentials is returned for unknown emails and wrong
	// passwords
	ErrAuthDeniedBadCredentials = fmt.Errorf("%w: bad credentials", ErrAuthDenied)
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
