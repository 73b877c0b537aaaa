// Package ban evaluates and enforces account bans.
//
// A user record carries a single ban slot (is_banned, ban_reason,
// banned_until, banned_by). Evaluate classifies that slot against the
// current time; Gate applies the result at login, on status polls and on
// every protected request; Controller is the admin mutation path.
package ban

import (
	"time"

	"budgeter/internal/model"
)

// Status is the outcome of evaluating a ban slot at a point in time
type Status int

const (
	// NotBanned means the record carries no ban
	NotBanned Status = iota
	// BannedActive means the ban is permanent or has not reached its end time
	BannedActive
	// BannedExpired means a time-limited ban whose end time has passed but
	// whose fields have not been cleared yet
	BannedExpired
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case NotBanned:
		return "NOT_BANNED"
	case BannedActive:
		return "BANNED_ACTIVE"
	case BannedExpired:
		return "BANNED_EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Evaluate classifies a ban slot. A nil bannedUntil on a banned record is a
// permanent ban. The end time is exclusive: at now == bannedUntil the ban has
// expired.
func Evaluate(isBanned bool, bannedUntil *time.Time, now time.Time) Status {
	if !isBanned {
		return NotBanned
	}
	if bannedUntil == nil || now.Before(*bannedUntil) {
		return BannedActive
	}
	return BannedExpired
}

// EvaluateUser classifies the ban slot of u
func EvaluateUser(u *model.User, now time.Time) Status {
	return Evaluate(u.IsBanned, u.BannedUntil, now)
}
