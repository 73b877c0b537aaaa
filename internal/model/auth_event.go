package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuthEventType identifies an authentication audit event
type AuthEventType string

const (
	AuthEventLoginSucceeded        AuthEventType = "login_succeeded"
	AuthEventLoginDeniedBanned     AuthEventType = "login_denied_banned"
	AuthEventLoginDeniedCredential AuthEventType = "login_denied_bad_credentials"
)

// AuthEvent is a server-side audit record of a login attempt.
// It is never exposed to unauthenticated callers.
type AuthEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Event     AuthEventType  `gorm:"type:varchar(64);not null;index" json:"event"`
	UserID    *int           `gorm:"index" json:"user_id"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	RemoteIP  string         `gorm:"type:varchar(64)" json:"remote_ip"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for AuthEvent model
func (AuthEvent) TableName() string {
	return "auth_events"
}
