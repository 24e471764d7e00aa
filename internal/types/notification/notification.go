package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationBeltPromotion   NotificationType = "belt_promotion"
	NotificationChapterUnlocked NotificationType = "chapter_unlocked"
	NotificationDiscordLinked   NotificationType = "discord_linked"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	Type        NotificationType   `json:"type" db:"type"`
	Status      NotificationStatus `json:"status" db:"status"`
	Title       string             `json:"title" db:"title"`
	Body        string             `json:"body" db:"body"`
	Data        map[string]any     `json:"data" db:"data"`
	ReferenceID string             `json:"reference_id" db:"reference_id"`
	ReadAt      *time.Time         `json:"read_at" db:"read_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
}
