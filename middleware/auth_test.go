package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestClerkAuthMiddlewareMissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/user", nil)
	rec := httptest.NewRecorder()

	ClerkAuthMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestClerkAuthMiddlewareRejectsNonBearer(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/user", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	ClerkAuthMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBotAuthMiddlewareUnsetSecret(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	req := httptest.NewRequest("POST", "/api/v1/discord/verify-link", nil)
	req.Header.Set("X-Bot-Token", "anything")
	rec := httptest.NewRecorder()

	BotAuthMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when secret is unset, got %d", rec.Code)
	}
}

func TestBotAuthMiddlewareWrongToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "super-secret")

	req := httptest.NewRequest("POST", "/api/v1/discord/verify-link", nil)
	req.Header.Set("X-Bot-Token", "not-the-secret")
	rec := httptest.NewRecorder()

	BotAuthMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBotAuthMiddlewareAccepts(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "super-secret")

	req := httptest.NewRequest("POST", "/api/v1/discord/verify-link", nil)
	req.Header.Set("X-Bot-Token", "super-secret")
	rec := httptest.NewRecorder()

	BotAuthMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestDebugOnlyMiddlewareDisabledByDefault(t *testing.T) {
	t.Setenv("DEBUG_ENDPOINTS_ENABLED", "")

	req := httptest.NewRequest("GET", "/api/v1/debug/xp-logs", nil)
	rec := httptest.NewRecorder()

	DebugOnlyMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestDebugOnlyMiddlewareEnabled(t *testing.T) {
	t.Setenv("DEBUG_ENDPOINTS_ENABLED", "true")

	req := httptest.NewRequest("GET", "/api/v1/debug/xp-logs", nil)
	rec := httptest.NewRecorder()

	DebugOnlyMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGetClerkIDRoundTrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClerkIDKey, "user_abc123")

	clerkID, ok := GetClerkID(ctx)
	if !ok || clerkID != "user_abc123" {
		t.Errorf("expected user_abc123, got %q (ok=%v)", clerkID, ok)
	}

	if _, ok := GetClerkID(context.Background()); ok {
		t.Error("expected lookup on empty context to fail")
	}
}
