package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"dojocodeAPI/internal/types/discord"
	"dojocodeAPI/middleware"
	"dojocodeAPI/services"
)

type DiscordHandler struct {
	discordService *services.DiscordService
	notifier       *services.DiscordNotifier
}

func NewDiscordHandler(discordService *services.DiscordService, notifier *services.DiscordNotifier) *DiscordHandler {
	return &DiscordHandler{
		discordService: discordService,
		notifier:       notifier,
	}
}

func (h *DiscordHandler) CreateLinkCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	code, err := h.discordService.IssueLinkCode(ctx, clerkID)
	if err != nil {
		log.Printf("Failed to issue link code: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to issue link code")
		return
	}

	respondWithJSON(w, http.StatusOK, code)
}

// VerifyLink is called by the Discord bot, never by an end user; the route
// sits behind BotAuthMiddleware. The distinct error strings below become
// distinct chat messages on the bot side, so they must not be collapsed.
func (h *DiscordHandler) VerifyLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req discord.VerifyLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, &discord.VerifyLinkResponse{Error: "invalid_request"})
		return
	}

	result, err := h.discordService.VerifyAndLink(ctx, req.Code, req.DiscordID, req.DiscordUsername)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingLinkFields):
			respondWithJSON(w, http.StatusBadRequest, &discord.VerifyLinkResponse{Error: "missing_fields"})
		case errors.Is(err, services.ErrInvalidCode):
			respondWithJSON(w, http.StatusBadRequest, &discord.VerifyLinkResponse{Error: "invalid_code"})
		case errors.Is(err, services.ErrCodeExpired):
			respondWithJSON(w, http.StatusBadRequest, &discord.VerifyLinkResponse{Error: "code_expired"})
		case errors.Is(err, services.ErrCodeUsed):
			respondWithJSON(w, http.StatusBadRequest, &discord.VerifyLinkResponse{Error: "code_already_used"})
		case errors.Is(err, services.ErrAlreadyLinked):
			respondWithJSON(w, http.StatusConflict, &discord.VerifyLinkResponse{Error: "already_linked"})
		default:
			log.Printf("Failed to verify link code: %v", err)
			respondWithJSON(w, http.StatusInternalServerError, &discord.VerifyLinkResponse{Error: "internal_error"})
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *DiscordHandler) GetLinkStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status, err := h.discordService.GetLinkStatus(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read link status")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func (h *DiscordHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.discordService.Unlink(ctx, clerkID); err != nil {
		if errors.Is(err, services.ErrDiscordNotLinked) {
			respondWithError(w, http.StatusBadRequest, "No Discord account linked")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to unlink")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Discord account unlinked"})
}

// NotifyChapterComplete fires the chapter-complete webhook toward the bot.
// A missing link or unconfigured webhook is reported as webhookSent=false,
// never as a failure; finishing a chapter must not depend on Discord.
func (h *DiscordHandler) NotifyChapterComplete(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req discord.ChapterCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChapterNum < 1 || req.ChapterTitle == "" {
		respondWithError(w, http.StatusBadRequest, "chapterNum and chapterTitle are required")
		return
	}

	lookupCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	discordID, discordUsername, err := h.discordService.GetLinkedIdentity(lookupCtx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrDiscordNotLinked) {
			respondWithJSON(w, http.StatusOK, &discord.ChapterCompleteResponse{Success: true, WebhookSent: false})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve Discord link")
		return
	}

	event := &discord.ChapterCompleteEvent{
		DiscordID:       discordID,
		DiscordUsername: discordUsername,
		ChapterNum:      req.ChapterNum,
		ChapterTitle:    req.ChapterTitle,
		UnlockedChapter: req.UnlockedChapter,
		PartComplete:    req.PartComplete,
		TotalProgress:   req.TotalProgress,
		XPReward:        req.XPReward,
	}

	// The retry loop can hold this request for several seconds; the server
	// WriteTimeout is sized for it.
	sent := h.notifier.SendChapterComplete(r.Context(), event)

	respondWithJSON(w, http.StatusOK, &discord.ChapterCompleteResponse{Success: true, WebhookSent: sent})
}
