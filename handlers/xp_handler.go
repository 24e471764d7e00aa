package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dojocodeAPI/internal/types/xp"
	"dojocodeAPI/middleware"
	"dojocodeAPI/services"
)

type XPHandler struct {
	xpService *services.XPService
}

func NewXPHandler(xpService *services.XPService) *XPHandler {
	return &XPHandler{
		xpService: xpService,
	}
}

func (h *XPHandler) CompleteChapter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req xp.CompleteChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChapterNum < 1 || req.ChapterTitle == "" {
		respondWithError(w, http.StatusBadRequest, "chapterNum and chapterTitle are required")
		return
	}

	result, err := h.xpService.CompleteChapter(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to complete chapter")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetXPLogs backs GET /debug/xp-logs. The route is wrapped in
// DebugOnlyMiddleware and returns 403 unless the deployment opts in.
func (h *XPHandler) GetXPLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	action := r.URL.Query().Get("action")
	referenceID := r.URL.Query().Get("referenceId")
	if action == "" || referenceID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'action' and 'referenceId' are required")
		return
	}

	result, err := h.xpService.CountLogs(ctx, clerkID, action, referenceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count xp logs")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
