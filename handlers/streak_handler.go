package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dojocodeAPI/middleware"
	"dojocodeAPI/services"
	"dojocodeAPI/utils"
)

type StreakHandler struct {
	streakService       *services.StreakService
	notificationService *services.NotificationService
	userService         *services.UserService
}

func NewStreakHandler(streakService *services.StreakService, notificationService *services.NotificationService, userService *services.UserService) *StreakHandler {
	return &StreakHandler{
		streakService:       streakService,
		notificationService: notificationService,
		userService:         userService,
	}
}

// RecordActivity handles POST /streak. Idempotent per dojo day; the response
// shape is identical to GET /streak.
func (h *StreakHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.streakService.RecordActivity(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record activity")
		return
	}

	if result.IsNewDay && utils.IsStreakMilestone(result.CurrentStreak) {
		if u, err := h.userService.GetUserByClerkID(ctx, clerkID); err == nil {
			if userID, err := uuid.Parse(u.ID); err == nil {
				go utils.StreakMilestoneReached(h.notificationService, userID, result.CurrentStreak)
			}
		}
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.streakService.GetStreak(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read streak")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
