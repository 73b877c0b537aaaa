// Package account implements registration, credential login and password
// changes on top of the user store and the ban gate.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgeter/internal/audit"
	"budgeter/internal/auth"
	"budgeter/internal/ban"
	"budgeter/internal/model"
	"budgeter/internal/store"
	"budgeter/internal/validator"

	"github.com/sirupsen/logrus"
)

var (
	// ErrWrongPassword is returned by ChangePassword when the current password does not match
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrPasswordReused is returned by ChangePassword when the new password equals the old one
	ErrPasswordReused = errors.New("new password must differ from the current password")
	// ErrNameRequired is returned by Register when the display name is blank or too long
	ErrNameRequired = errors.New("invalid name")
	// ErrEmailInvalid is returned by Register when the email is malformed
	ErrEmailInvalid = errors.New("invalid email address")
	// ErrHashFailed wraps a bcrypt failure while storing a new password
	ErrHashFailed = errors.New("failed to hash password")
)

// Users is the subset of the user store the account service depends on
type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int, hash string) error
}

// Auditor records login outcomes
type Auditor interface {
	Record(ctx context.Context, e audit.Event)
}

// LoginResult is returned by a successful Login
type LoginResult struct {
	Token    string
	ExpireAt time.Time
	User     *model.User
}

// Service implements account operations
type Service struct {
	users  Users
	gate   *ban.Gate
	tokens *auth.TokenManager
	audit  Auditor
	logger *logrus.Entry
	now    func() time.Time
}

// NewService creates a new account service
func NewService(users Users, gate *ban.Gate, tokens *auth.TokenManager, auditor Auditor, logger *logrus.Entry) *Service {
	return &Service{
		users:  users,
		gate:   gate,
		tokens: tokens,
		audit:  auditor,
		logger: logger.WithField("component", "account"),
		now:    time.Now,
	}
}

// RegisterRequest carries the fields of a new account
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// Register creates a regular user account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := store.NormalizeEmail(req.Email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmailInvalid, err)
	}
	name := strings.TrimSpace(req.Name)
	if err := validator.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNameRequired, err)
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailed, err)
	}

	u := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")
	return u, nil
}

// Login verifies credentials, consults the ban gate and issues a session
// token. Every denial wraps ban.ErrAuthDenied; the specific reason is only
// recorded in the audit log.
func (s *Service) Login(ctx context.Context, email, password, remoteIP string) (*LoginResult, error) {
	email = store.NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		_ = auth.CompareDummy(password)
		s.record(ctx, model.AuthEventLoginDeniedCredential, nil, email, remoteIP, map[string]interface{}{"cause": "unknown_email"})
		return nil, ban.ErrAuthDeniedBadCredentials
	}

	if err := auth.ComparePassword(u.PasswordHash, password); err != nil {
		s.record(ctx, model.AuthEventLoginDeniedCredential, &u.ID, email, remoteIP, map[string]interface{}{"cause": "wrong_password"})
		return nil, ban.ErrAuthDeniedBadCredentials
	}

	if err := s.gate.CheckLogin(ctx, u); err != nil {
		if errors.Is(err, ban.ErrAuthDeniedBanned) {
			details := map[string]interface{}{"ban_reason": model.StrVal(u.BanReason)}
			if u.BannedUntil != nil {
				details["banned_until"] = u.BannedUntil.UTC().Format(time.RFC3339)
			}
			s.record(ctx, model.AuthEventLoginDeniedBanned, &u.ID, email, remoteIP, details)
		}
		return nil, err
	}

	token, expireAt, err := s.tokens.Generate(u.ID, u.Email, string(u.Role), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(ctx, model.AuthEventLoginSucceeded, &u.ID, email, remoteIP, nil)
	return &LoginResult{Token: token, ExpireAt: expireAt, User: u}, nil
}

// EmailExists reports whether an account is registered under email. It
// never reports ban status.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.EmailExists(ctx, email)
}

// ChangePassword replaces the password of userID after verifying the current
// one, and clears any forced reset
func (s *Service) ChangePassword(ctx context.Context, userID int, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(u.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}
	if current == next {
		return ErrPasswordReused
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHashFailed, err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":          u.ID,
		"was_forced_reset": u.ForcePasswordReset,
	}).Info("Password changed")
	return nil
}

func (s *Service) record(ctx context.Context, t model.AuthEventType, userID *int, email, remoteIP string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		Type:     t,
		UserID:   userID,
		Email:    email,
		RemoteIP: remoteIP,
		Details:  details,
	})
}
