package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dojocodeAPI/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, "user_test123")
	return req.WithContext(ctx)
}

func TestVerifyLinkRejectsMalformedBody(t *testing.T) {
	h := NewDiscordHandler(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/discord/verify-link", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.VerifyLink(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp["error"] != "invalid_request" {
		t.Errorf("expected error invalid_request, got %v", resp["error"])
	}
}

func TestNotifyChapterCompleteRequiresAuth(t *testing.T) {
	h := NewDiscordHandler(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/discord/notify-chapter-complete",
		strings.NewReader(`{"chapterNum":1,"chapterTitle":"Hello"}`))
	rec := httptest.NewRecorder()

	h.NotifyChapterComplete(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestNotifyChapterCompleteValidatesFields(t *testing.T) {
	h := NewDiscordHandler(nil, nil)

	cases := []string{
		`{"chapterNum":0,"chapterTitle":"Hello"}`,
		`{"chapterNum":3,"chapterTitle":""}`,
		`{}`,
		`not json`,
	}

	for _, body := range cases {
		rec := httptest.NewRecorder()
		h.NotifyChapterComplete(rec, authedRequest("POST", "/api/v1/discord/notify-chapter-complete", body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateLinkCodeRequiresAuth(t *testing.T) {
	h := NewDiscordHandler(nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/discord/link-code", nil)
	rec := httptest.NewRecorder()

	h.CreateLinkCode(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
