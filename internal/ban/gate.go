package ban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgeter/internal/model"
	"budgeter/internal/store"

	"github.com/sirupsen/logrus"
)

// Users is the subset of the user store the ban subsystem depends on
type Users interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	SetBan(ctx context.Context, id int, reason string, bannedUntil *time.Time, bannedBy int) error
	ClearBan(ctx context.Context, id int) error
	ClearExpiredBan(ctx context.Context, id int, now time.Time) (bool, error)
	SetForcePasswordReset(ctx context.Context, id int, force bool) error
}

// BanStatus is the ban state reported to a session holder
type BanStatus struct {
	IsBanned    bool       `json:"isBanned"`
	Reason      *string    `json:"reason"`
	BannedUntil *time.Time `json:"bannedUntil"`
}

// StatusOf builds the reported status of an already resolved record
func StatusOf(u *model.User) BanStatus {
	if !u.IsBanned {
		return BanStatus{}
	}
	return BanStatus{IsBanned: true, Reason: u.BanReason, BannedUntil: u.BannedUntil}
}

// Gate enforces bans against the live user record. It keeps no cache:
// every call re-reads or re-evaluates the record it is given.
type Gate struct {
	users  Users
	logger *logrus.Entry
	now    func() time.Time
}

// NewGate creates a new enforcement gate
func NewGate(users Users, logger *logrus.Entry) *Gate {
	return &Gate{
		users:  users,
		logger: logger.WithField("component", "ban-gate"),
		now:    time.Now,
	}
}

// Resolve evaluates u and, when its ban has expired, clears the stored ban
// and u's in-memory fields in the same operation. The returned status is
// never BannedExpired.
func (g *Gate) Resolve(ctx context.Context, u *model.User) (Status, error) {
	now := g.now()
	status := EvaluateUser(u, now)
	if status != BannedExpired {
		return status, nil
	}

	cleared, err := g.users.ClearExpiredBan(ctx, u.ID, now)
	if err != nil {
		return NotBanned, fmt.Errorf("auto-unban user %d: %w", u.ID, err)
	}
	if cleared {
		g.logger.WithFields(logrus.Fields{
			"user_id":      u.ID,
			"banned_until": u.BannedUntil,
		}).Info("Auto-unbanned expired ban")
	}
	u.ClearBanFields()
	return NotBanned, nil
}

// CheckLogin runs after credential verification. An active ban denies the
// login as a whole with ErrAuthDeniedBanned.
func (g *Gate) CheckLogin(ctx context.Context, u *model.User) error {
	status, err := g.Resolve(ctx, u)
	if err != nil {
		return err
	}
	if status == BannedActive {
		return ErrAuthDeniedBanned
	}
	return nil
}

// CheckSession re-reads the live record of a session holder and reports its
// ban status. A banned result is the session-revoked signal; the token itself
// stays valid and it is up to the caller to drop it.
func (g *Gate) CheckSession(ctx context.Context, userID int) (*model.User, BanStatus, error) {
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, BanStatus{}, ErrNotFound
		}
		return nil, BanStatus{}, err
	}

	if _, err := g.Resolve(ctx, u); err != nil {
		return nil, BanStatus{}, err
	}
	return u, StatusOf(u), nil
}
