package dto

import (
	"time"

	"github.com/democraciv/bank_backend/internal/core/domain"
)

// CreateUserRequest registers a new user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
}

// UpdateUserRequest updates a user's own settings.
type UpdateUserRequest struct {
	Username          *string `json:"username"`
	DiscordDMsEnabled *bool   `json:"discordDMsEnabled"`
}

// LinkDiscordRequest attaches a linked external identity to a user.
// The OAuth exchange itself happens in the excluded presentation layer;
// the core only records the result.
type LinkDiscordRequest struct {
	DiscordID        int64  `json:"discordID" binding:"required"`
	DiscordUsername  string `json:"discordUsername"`
	DiscordAvatarURL string `json:"discordAvatarURL"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID            string    `json:"userID"`
	Username          string    `json:"username"`
	DiscordID         *int64    `json:"discordID,omitempty"`
	DiscordUsername   string    `json:"discordUsername,omitempty"`
	DiscordDMsEnabled bool      `json:"discordDMsEnabled"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:            u.UserID,
		Username:          u.Username,
		DiscordID:         u.DiscordID,
		DiscordUsername:   u.DiscordUsername,
		DiscordDMsEnabled: u.DiscordDMsEnabled,
		CreatedAt:         u.CreatedAt,
	}
}
