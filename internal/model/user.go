package model

import (
	"time"
)

// Role represents a user role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents an account in the system.
// The four ban columns are always written together: when IsBanned is false
// BanReason, BannedUntil and BannedBy are NULL.
type User struct {
	BaseModel
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name               string     `gorm:"type:varchar(128);not null" json:"name"`
	PasswordHash       string     `gorm:"type:varchar(255);not null" json:"-"`
	Role               Role       `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	IsBanned           bool       `gorm:"not null;default:false" json:"is_banned"`
	BanReason          *string    `gorm:"type:text" json:"ban_reason"`
	BannedUntil        *time.Time `json:"banned_until"`
	BannedBy           *int       `gorm:"index" json:"banned_by"`
	ForcePasswordReset bool       `gorm:"not null;default:false" json:"force_password_reset"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ClearBanFields resets the in-memory ban columns to the unbanned state
func (u *User) ClearBanFields() {
	u.IsBanned = false
	u.BanReason = nil
	u.BannedUntil = nil
	u.BannedBy = nil
}
