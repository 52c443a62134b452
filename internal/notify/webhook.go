// Package notify posts deadline reminders for todo items to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nhle/mcp-todo/internal/model"
)

// DeadlineMessage is the content of every deadline notification.
const DeadlineMessage = "Task deadline approaching!"

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Content string         `json:"content"`
	Data    model.TodoItem `json:"data"`
}

// Webhook sends notifications as JSON POST requests. Rate-limited
// requests (429) are retried with backoff.
type Webhook struct {
	url        string
	httpClient *http.Client
	maxRetries int
}

// NewWebhook creates a webhook sender for url.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
	}
}

// Send posts a deadline notification for item. Any non-2xx response other
// than a retried 429 is an error.
func (w *Webhook) Send(ctx context.Context, item model.TodoItem) error {
	data, err := json.Marshal(Payload{Content: DeadlineMessage, Data: item})
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification for item %s: %w", item.ID, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < w.maxRetries:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
			}
		default:
			return fmt.Errorf("sending notification for item %s: %s", item.ID, resp.Status)
		}
	}
}

// retryAfterDuration reads the Retry-After header in seconds and falls back
// to exponential backoff capped at 30s.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	backoff := time.Duration(1<<uint(attempt)) * time.Second
	return min(backoff, 30*time.Second)
}
