package domain

import "time"

// User represents a registered user of the bank.
// The discord fields are the user's linked external identity; notification
// targets are derived from them.
type User struct {
	UserID            string    `json:"userID"` // Primary key (UUID)
	Username          string    `json:"username"`
	IsAdmin           bool      `json:"isAdmin"`
	DiscordID         *int64    `json:"discordID,omitempty"`
	DiscordUsername   string    `json:"discordUsername,omitempty"`
	DiscordAvatarURL  string    `json:"discordAvatarURL,omitempty"`
	DiscordDMsEnabled bool      `json:"discordDMsEnabled"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NotifyTarget returns the user's external identity id when DMs can reach
// them, or false when the user is unreachable.
func (u *User) NotifyTarget() (int64, bool) {
	if u.DiscordID == nil || !u.DiscordDMsEnabled {
		return 0, false
	}
	return *u.DiscordID, true
}
