// Package notify provides push notification helpers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmagar/anydl/internal/model"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// Gotify message priorities used for batch summaries.
const (
	PriorityLow    = 2
	PriorityNormal = 5
	PriorityHigh   = 8
)

// Send posts a message to a Gotify server.
// Returns nil immediately if url or token are empty.
func Send(ctx context.Context, serverURL, token, title, message string, priority int) error {
	if serverURL == "" || token == "" {
		return nil
	}

	url := strings.TrimRight(serverURL, "/") + "/message"

	body, err := json.Marshal(map[string]any{
		"title":    title,
		"message":  message,
		"priority": priority,
	})
	if err != nil {
		return fmt.Errorf("gotify: marshal failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gotify: create request failed: %w", err)
	}
	req.Header.Set("X-Gotify-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotify: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gotify: server returned %d", resp.StatusCode)
	}
	return nil
}

// Priority maps a summary severity onto the Gotify priority scale.
func Priority(severity int) int {
	switch severity {
	case model.MessagePriorityError:
		return PriorityHigh
	case model.MessagePriorityWarning:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Notifier pushes finished batch summaries.
type Notifier func(ctx context.Context, s model.BatchSummary) error

// BuildNotifier returns a Notifier wired to the given Gotify server.
// Returns nil (disabling notifications) if url or token are empty.
func BuildNotifier(serverURL, token string) Notifier {
	if serverURL == "" || token == "" {
		return nil
	}
	return func(ctx context.Context, s model.BatchSummary) error {
		return Send(ctx, serverURL, token, "anydl batch", s.String(), Priority(s.Severity()))
	}
}
