package discord

import (
	"time"

	"github.com/google/uuid"
)

type LinkCode struct {
	Code      string    `json:"code" db:"code"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LinkCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyLinkRequest struct {
	Code            string `json:"code"`
	DiscordID       string `json:"discordId"`
	DiscordUsername string `json:"discordUsername"`
}

type VerifyLinkResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

type LinkStatusResponse struct {
	Linked          bool   `json:"linked"`
	DiscordUsername string `json:"discordUsername,omitempty"`
}

type ChapterCompleteRequest struct {
	ChapterNum      int     `json:"chapterNum"`
	ChapterTitle    string  `json:"chapterTitle"`
	UnlockedChapter *string `json:"unlockedChapter,omitempty"`
	PartComplete    *string `json:"partComplete,omitempty"`
	TotalProgress   *int    `json:"totalProgress,omitempty"`
	XPReward        *int    `json:"xpReward,omitempty"`
}

type ChapterCompleteResponse struct {
	Success     bool `json:"success"`
	WebhookSent bool `json:"webhookSent"`
}

// ChapterCompleteEvent is the payload signed and POSTed to the bot's
// webhook endpoint.
type ChapterCompleteEvent struct {
	DiscordID       string  `json:"discordId"`
	DiscordUsername string  `json:"discordUsername"`
	ChapterNum      int     `json:"chapterNum"`
	ChapterTitle    string  `json:"chapterTitle"`
	UnlockedChapter *string `json:"unlockedChapter,omitempty"`
	PartComplete    *string `json:"partComplete,omitempty"`
	TotalProgress   *int    `json:"totalProgress,omitempty"`
	XPReward        *int    `json:"xpReward,omitempty"`
}
