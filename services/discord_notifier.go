package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dojocodeAPI/internal/types/discord"
)

const (
	webhookTimeout  = 5 * time.Second
	webhookAttempts = 3
)

var webhookDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "discord_webhook_deliveries_total",
		Help: "Outcomes of chapter-complete webhook deliveries",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(webhookDeliveriesTotal)
}

// DiscordNotifier delivers signed chapter-complete events to the Discord
// bot's webhook endpoint. Delivery is best-effort: configuration may be
// absent and failures are logged, never surfaced to the caller's request.
type DiscordNotifier struct {
	baseURL string
	secret  string
	client  *http.Client

	// backoffBase is 1s in production; tests shrink it.
	backoffBase time.Duration
}

func NewDiscordNotifier() *DiscordNotifier {
	return &DiscordNotifier{
		baseURL:     os.Getenv("DISCORD_WEBHOOK_URL"),
		secret:      os.Getenv("DISCORD_WEBHOOK_SECRET"),
		client:      &http.Client{Timeout: webhookTimeout},
		backoffBase: time.Second,
	}
}

func signPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SendChapterComplete POSTs the event to {baseURL}/webhook/chapter-complete
// with an X-Webhook-Signature header. Returns whether the event was
// delivered; an unconfigured webhook is a silent "not sent".
func (n *DiscordNotifier) SendChapterComplete(ctx context.Context, event *discord.ChapterCompleteEvent) bool {
	if n.baseURL == "" {
		webhookDeliveriesTotal.WithLabelValues("skipped").Inc()
		return false
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal chapter-complete event: %v", err)
		webhookDeliveriesTotal.WithLabelValues("failed").Inc()
		return false
	}

	url := n.baseURL + "/webhook/chapter-complete"
	signature := signPayload(n.secret, body)

	for attempt := 0; attempt < webhookAttempts; attempt++ {
		if attempt > 0 {
			// Doubling backoff between attempts: 1s, then 2s.
			backoff := n.backoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				log.Printf("Webhook delivery cancelled: %v", ctx.Err())
				webhookDeliveriesTotal.WithLabelValues("failed").Inc()
				return false
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			log.Printf("Failed to build webhook request: %v", err)
			webhookDeliveriesTotal.WithLabelValues("failed").Inc()
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Signature", signature)

		resp, err := n.client.Do(req)
		if err != nil {
			log.Printf("Webhook delivery attempt %d failed: %v", attempt+1, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			webhookDeliveriesTotal.WithLabelValues("delivered").Inc()
			return true
		}
		log.Printf("Webhook delivery attempt %d got status %d", attempt+1, resp.StatusCode)
	}

	log.Printf("Webhook delivery exhausted %d attempts for chapter %d", webhookAttempts, event.ChapterNum)
	webhookDeliveriesTotal.WithLabelValues("failed").Inc()
	return false
}
