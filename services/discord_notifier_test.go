package services

import (
	"context"
	"crypto/hmac"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dojocodeAPI/internal/types/discord"
)

func testNotifier(baseURL string) *DiscordNotifier {
	return &DiscordNotifier{
		baseURL:     baseURL,
		secret:      "test-secret",
		client:      &http.Client{Timeout: time.Second},
		backoffBase: time.Millisecond,
	}
}

func testEvent() *discord.ChapterCompleteEvent {
	return &discord.ChapterCompleteEvent{
		DiscordID:       "123456789",
		DiscordUsername: "kata_kid",
		ChapterNum:      3,
		ChapterTitle:    "Pointers",
	}
}

func TestSendChapterCompleteSignsPayload(t *testing.T) {
	var gotSignature string
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSignature = r.Header.Get("X-Webhook-Signature")
		body, _ := io.ReadAll(r.Body)
		expected := signPayload("test-secret", body)
		if !hmac.Equal([]byte(expected), []byte(gotSignature)) {
			t.Errorf("signature mismatch: got %s, expected %s", gotSignature, expected)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sent := testNotifier(server.URL).SendChapterComplete(context.Background(), testEvent())
	if !sent {
		t.Error("expected delivery to succeed")
	}
	if gotPath != "/webhook/chapter-complete" {
		t.Errorf("expected path /webhook/chapter-complete, got %s", gotPath)
	}
	if gotSignature == "" {
		t.Error("expected X-Webhook-Signature header")
	}
}

func TestSendChapterCompleteRetriesOnServerError(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sent := testNotifier(server.URL).SendChapterComplete(context.Background(), testEvent())
	if !sent {
		t.Error("expected delivery to succeed on the third attempt")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestSendChapterCompleteGivesUpAfterThreeAttempts(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sent := testNotifier(server.URL).SendChapterComplete(context.Background(), testEvent())
	if sent {
		t.Error("expected delivery to fail")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

func TestSendChapterCompleteUnconfiguredIsSoftSkip(t *testing.T) {
	sent := testNotifier("").SendChapterComplete(context.Background(), testEvent())
	if sent {
		t.Error("expected unconfigured webhook to report not sent")
	}
}

func TestSendChapterCompleteStopsOnCancelledContext(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())

	notifier := testNotifier(server.URL)
	notifier.backoffBase = 50 * time.Millisecond

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	sent := notifier.SendChapterComplete(ctx, testEvent())
	if sent {
		t.Error("expected cancelled delivery to report not sent")
	}
	if got := atomic.LoadInt32(&attempts); got >= 3 {
		t.Errorf("expected cancellation to cut retries short, got %d attempts", got)
	}
}
