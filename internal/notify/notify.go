// Package notify posts a best-effort summary after a successful
// submission. Failures are the caller's to log; nothing here ever blocks
// or rolls back a persisted ring.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// Summary describes a freshly submitted ring.
type Summary struct {
	Slug         string   `json:"slug"`
	MediaName    string   `json:"media_name"`
	ItemName     string   `json:"item_name"`
	Contributors []string `json:"contributors,omitempty"`
	UniversalURL string   `json:"universal_url"`
}

// Notifier is the notification surface exposed to the coordinator.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// NewNotifier builds a webhook-backed notifier. When no webhook URL is
// configured, a noop implementation is returned.
func NewNotifier(webhookURL string) Notifier {
	if webhookURL == "" {
		return noopNotifier{}
	}
	return &webhookNotifier{
		endpoint: webhookURL,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type webhookNotifier struct {
	endpoint string
	client   *http.Client
}

func (n *webhookNotifier) Notify(ctx context.Context, summary Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, summary Summary) error {
	return nil
}
