package model

import (
	"time"
)

// BaseModel carries the id and audit timestamps shared by every table.
// Timestamps are written in UTC; db.Open sets gorm's NowFunc accordingly.
type BaseModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updated_at"`
}
