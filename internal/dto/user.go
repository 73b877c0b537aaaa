package dto

import (
	"time"

	"budgeter/internal/model"
)

// UserDTO represents a user in self-service API responses
type UserDTO struct {
	ID                 int       `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	ForcePasswordReset bool      `json:"forcePasswordReset"`
	CreatedAt          time.Time `json:"createdAt"`
}

// AdminUserDTO represents a user in admin API responses, ban fields included
type AdminUserDTO struct {
	UserDTO
	IsBanned    bool       `json:"isBanned"`
	BanReason   *string    `json:"banReason"`
	BannedUntil *time.Time `json:"bannedUntil"`
	BannedBy    *int       `json:"bannedBy"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToUserDTO converts a user record
func ToUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		ForcePasswordReset: u.ForcePasswordReset,
		CreatedAt:          u.CreatedAt,
	}
}

// ToAdminUserDTO converts a user record for the admin console
func ToAdminUserDTO(u *model.User) AdminUserDTO {
	return AdminUserDTO{
		UserDTO:     ToUserDTO(u),
		IsBanned:    u.IsBanned,
		BanReason:   u.BanReason,
		BannedUntil: u.BannedUntil,
		BannedBy:    u.BannedBy,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToAdminUserDTOs converts a list of user records
func ToAdminUserDTOs(users []model.User) []AdminUserDTO {
	out := make([]AdminUserDTO, 0, len(users))
	for i := range users {
		out = append(out, ToAdminUserDTO(&users[i]))
	}
	return out
}
