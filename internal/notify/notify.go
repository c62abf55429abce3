package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
)

// Notifier delivers best-effort pipeline notifications to a webhook. Delivery
// failures are the caller's to log; they never abort a pipeline run.
type Notifier struct {
	webhookURL string
	client     *retryablehttp.Client
}

// NewNotifier creates a notifier for the configured webhook
func NewNotifier(config *configuration.Notify) *Notifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &Notifier{
		webhookURL: config.WebhookURL,
		client:     client,
	}
}

type payload struct {
	Text string `json:"text"`
}

// Send posts a text message to the webhook
func (n *Notifier) Send(ctx context.Context, message string) error {
	log.Debug().Str("webhook", n.webhookURL).Msg("Sending notification")

	body, err := json.Marshal(payload{Text: message})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	log.Debug().Msg("Notification delivered")

	return nil
}
