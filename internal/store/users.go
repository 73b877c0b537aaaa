package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgeter/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user id or email does not resolve
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore persists user records
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	exists, err := s.EmailExists(ctx, u.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID loads a user by id
func (s *UserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail loads a user by email, case-insensitively
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return &user, nil
}

// EmailExists reports whether an account is registered under email
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER(email) = ?", NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// List returns all users, newest first
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetBan writes all four ban columns, replacing any previous ban
func (s *UserStore) SetBan(ctx context.Context, id int, reason string, bannedUntil *time.Time, bannedBy int) error {
	var until interface{}
	if bannedUntil != nil {
		until = bannedUntil.UTC()
	}

	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_banned":    true,
			"ban_reason":   reason,
			"banned_until": until,
			"banned_by":    bannedBy,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to ban user %d: %w", id, err)
	}
	return nil
}

// ClearBan resets all four ban columns unconditionally
func (s *UserStore) ClearBan(ctx context.Context, id int) error {
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(clearedBanColumns()).Error
	if err != nil {
		return fmt.Errorf("failed to unban user %d: %w", id, err)
	}
	return nil
}

// ClearExpiredBan resets the ban columns only while the stored ban is still
// expired at now. A ban re-applied after the caller read the record is left
// untouched. Returns true when a row was cleared.
func (s *UserStore) ClearExpiredBan(ctx context.Context, id int, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND is_banned = ? AND banned_until IS NOT NULL AND banned_until <= ?", id, true, now.UTC()).
		Updates(clearedBanColumns())
	if res.Error != nil {
		return false, fmt.Errorf("failed to clear expired ban for user %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetForcePasswordReset toggles the forced password reset flag
func (s *UserStore) SetForcePasswordReset(ctx context.Context, id int, force bool) error {
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("force_password_reset", force).Error
	if err != nil {
		return fmt.Errorf("failed to update force_password_reset for user %d: %w", id, err)
	}
	return nil
}

// UpdatePassword stores a new password hash and clears any forced reset
func (s *UserStore) UpdatePassword(ctx context.Context, id int, hash string) error {
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":        hash,
			"force_password_reset": false,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", id, err)
	}
	return nil
}

func clearedBanColumns() map[string]interface{} {
	return map[string]interface{}{
		"is_banned":    false,
		"ban_reason":   nil,
		"banned_until": nil,
		"banned_by":    nil,
	}
}
