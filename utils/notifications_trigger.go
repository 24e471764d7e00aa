package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"dojocodeAPI/internal/types/notification"
)

// NotificationCreator keeps this package decoupled from the services
// package; anything with CreateNotification can be handed in.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// Streak milestones worth celebrating.
var streakMilestones = map[int]bool{7: true, 30: true, 100: true, 365: true}

func IsStreakMilestone(days int) bool {
	return streakMilestones[days]
}

func StreakMilestoneReached(notifier NotificationCreator, userID uuid.UUID, days int) {
	bgCtx := context.Background()

	_, err := notifier.CreateNotification(bgCtx, &notification.CreateNotificationRequest{
		UserID:      userID,
		Type:        notification.NotificationStreakMilestone,
		Title:       fmt.Sprintf("%d-day streak!", days),
		Body:        fmt.Sprintf("You've trained %d days in a row. Keep it going!", days),
		Data:        map[string]any{"days": days},
		ReferenceID: fmt.Sprintf("streak-%d", days),
	})
	if err != nil {
		log.Printf("Failed to create streak milestone notification for %s: %v", userID, err)
	}
}

func BeltPromoted(notifier NotificationCreator, userID uuid.UUID, belt string) {
	bgCtx := context.Background()

	_, err := notifier.CreateNotification(bgCtx, &notification.CreateNotificationRequest{
		UserID:      userID,
		Type:        notification.NotificationBeltPromotion,
		Title:       "Belt promotion",
		Body:        fmt.Sprintf("You've been promoted to %s belt!", belt),
		Data:        map[string]any{"belt": belt},
		ReferenceID: fmt.Sprintf("belt-%s", belt),
	})
	if err != nil {
		log.Printf("Failed to create belt promotion notification for %s: %v", userID, err)
	}
}
