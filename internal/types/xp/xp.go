package xp

import (
	"time"

	"github.com/google/uuid"
)

type XPAction string

const (
	ActionChapterComplete  XPAction = "chapter_complete"
	ActionExerciseComplete XPAction = "exercise_complete"
	ActionDailyStreak      XPAction = "daily_streak"
)

type XPLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Action      XPAction  `json:"action" db:"action"`
	ReferenceID string    `json:"reference_id" db:"reference_id"`
	Amount      int       `json:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type AwardResult struct {
	Awarded  bool   `json:"awarded"`
	XP       int    `json:"xp"`
	Belt     string `json:"belt"`
	BeltUp   bool   `json:"beltUp"`
	Previous string `json:"previousBelt,omitempty"`
}

type CompleteChapterRequest struct {
	ChapterNum   int    `json:"chapterNum"`
	ChapterTitle string `json:"chapterTitle"`
	XPReward     int    `json:"xpReward"`
}

type DebugLogCountResponse struct {
	Count       int    `json:"count"`
	Action      string `json:"action"`
	ReferenceID string `json:"referenceId"`
	UserID      string `json:"userId"`
}
