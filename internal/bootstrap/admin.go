package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"budgeter/internal/auth"
	"budgeter/internal/model"
	"budgeter/internal/store"

	"github.com/sirupsen/logrus"
)

// AdminSeed describes the initial administrator account
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// Users is the subset of the user store needed for seeding
type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// EnsureAdmin creates the seed administrator unless an account with its
// email already exists. An existing account is left untouched, including
// its role and password. Returns true when the account was created.
func EnsureAdmin(ctx context.Context, users Users, seed AdminSeed, log *logrus.Entry) (bool, error) {
	if seed.Email == "" {
		return false, nil
	}
	if err := auth.ValidatePassword(seed.Password); err != nil {
		return false, fmt.Errorf("admin seed: %w", err)
	}

	existing, err := users.GetByEmail(ctx, seed.Email)
	if err == nil {
		if !existing.IsAdmin() {
			log.WithField("email", existing.Email).Warn("Seed admin email belongs to a non-admin account")
		}
		return false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("admin seed: failed to hash password: %w", err)
	}
	name := seed.Name
	if name == "" {
		name = "System Administrator"
	}

	admin := &model.User{
		Email:        seed.Email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("admin seed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"user_id": admin.ID,
		"email":   admin.Email,
	}).Info("✓ Seed admin created")
	return true, nil
}
