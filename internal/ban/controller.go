package ban

import (
	"context"
	"errors"
	"strings"
	"time"

	"budgeter/internal/model"
	"budgeter/internal/store"

	"github.com/sirupsen/logrus"
)

// Actor is the authenticated caller of an admin operation, built from the
// live user record rather than the session token snapshot
type Actor struct {
	ID   int
	Role model.Role
}

// ActorOf builds an Actor from a live user record
func ActorOf(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Notifier is told about ban changes after they are stored. Delivery is best
// effort.
type Notifier interface {
	NotifyBanned(userID int, status BanStatus)
	NotifyUnbanned(userID int)
}

type nopNotifier struct{}

func (nopNotifier) NotifyBanned(int, BanStatus) {}
func (nopNotifier) NotifyUnbanned(int)          {}

// BanRequest describes a ban to apply. A nil BannedUntil is permanent.
type BanRequest struct {
	TargetID    int
	Reason      string
	BannedUntil *time.Time
}

// Controller is the privileged mutation path for ban fields
type Controller struct {
	users    Users
	notifier Notifier
	logger   *logrus.Entry
	now      func() time.Time
}

// NewController creates a new admin ban controller. notifier may be nil.
func NewController(users Users, notifier Notifier, logger *logrus.Entry) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Controller{
		users:    users,
		notifier: notifier,
		logger:   logger.WithField("component", "ban-controller"),
		now:      time.Now,
	}
}

// Ban sets all four ban fields on the target, overwriting any previous ban.
// Admin accounts cannot be banned through this path.
func (c *Controller) Ban(ctx context.Context, actor Actor, req BanRequest) error {
	if actor.Role != model.RoleAdmin {
		return ErrForbidden
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return validationf("ban reason is required")
	}
	if req.TargetID <= 0 {
		return validationf("invalid target user id")
	}

	var until *time.Time
	if req.BannedUntil != nil {
		t := req.BannedUntil.UTC().Truncate(time.Second)
		if !t.After(c.now()) {
			return validationf("bannedUntil must be in the future")
		}
		until = &t
	}

	target, err := c.loadTarget(ctx, req.TargetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return validationf("admin accounts cannot be banned")
	}

	if err := c.users.SetBan(ctx, target.ID, reason, until, actor.ID); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"admin_id":     actor.ID,
		"user_id":      target.ID,
		"reason":       reason,
		"banned_until": until,
		"overwrote":    target.IsBanned,
	}).Info("User banned")

	c.notifier.NotifyBanned(target.ID, BanStatus{IsBanned: true, Reason: &reason, BannedUntil: until})
	return nil
}

// Unban clears all four ban fields on the target. Unbanning a user who is not
// banned succeeds.
func (c *Controller) Unban(ctx context.Context, actor Actor, targetID int) error {
	if actor.Role != model.RoleAdmin {
		return ErrForbidden
	}
	if targetID <= 0 {
		return validationf("invalid target user id")
	}

	target, err := c.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}

	if err := c.users.ClearBan(ctx, target.ID); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"admin_id":   actor.ID,
		"user_id":    target.ID,
		"was_banned": target.IsBanned,
	}).Info("User unbanned")

	c.notifier.NotifyUnbanned(target.ID)
	return nil
}

// SetForcePasswordReset toggles the forced password reset flag on the target
// and returns the updated record
func (c *Controller) SetForcePasswordReset(ctx context.Context, actor Actor, targetID int, force bool) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	if targetID <= 0 {
		return nil, validationf("invalid target user id")
	}

	target, err := c.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := c.users.SetForcePasswordReset(ctx, target.ID, force); err != nil {
		return nil, err
	}
	target.ForcePasswordReset = force

	c.logger.WithFields(logrus.Fields{
		"admin_id":    actor.ID,
		"user_id":     target.ID,
		"force_reset": force,
	}).Info("Force password reset updated")
	return target, nil
}

func (c *Controller) loadTarget(ctx context.Context, id int) (*model.User, error) {
	target, err := c.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return target, nil
}
