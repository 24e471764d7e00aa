package user

import "time"

type User struct {
	ID              string     `json:"id"`
	ClerkID         string     `json:"clerkId"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	EmailVerified   bool       `json:"emailVerified"`
	XP              int        `json:"xp"`
	Belt            string     `json:"belt"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastActivityDay *time.Time `json:"last_activity_date,omitempty"`
	DiscordID       *string    `json:"discord_id,omitempty"`
	DiscordUsername *string    `json:"discord_username,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
