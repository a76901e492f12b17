// Package cache fires the site's named cache invalidation triggers after
// a submission lands. Like notifications, these are best-effort: the
// submission already succeeded by the time they run.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/slug"
)

const requestTimeout = 10 * time.Second

// Trigger names a cached listing to invalidate.
type Trigger string

const (
	// TriggerLatest invalidates the recent-items listing.
	TriggerLatest Trigger = "latest"
	// TriggerMedia invalidates the per-media listing.
	TriggerMedia Trigger = "media"
	// TriggerContributor invalidates per-contributor listings.
	TriggerContributor Trigger = "contributor"
)

// Invalidator is the invalidation surface exposed to the coordinator.
type Invalidator interface {
	// InvalidateFor fires all triggers affected by the submitted ring.
	InvalidateFor(ctx context.Context, ring *domain.Ring) error
}

// NewInvalidator builds an invalidator against the site's revalidation
// endpoint; a noop is returned when no endpoint is configured.
func NewInvalidator(revalidateURL, secret string) Invalidator {
	if revalidateURL == "" {
		return noopInvalidator{}
	}
	return &httpInvalidator{
		endpoint: revalidateURL,
		secret:   secret,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type httpInvalidator struct {
	endpoint string
	secret   string
	client   *http.Client
}

type invalidateRequest struct {
	Tags []string `json:"tags"`
}

func (i *httpInvalidator) InvalidateFor(ctx context.Context, ring *domain.Ring) error {
	tags := []string{string(TriggerLatest)}
	if ring.MediaName != "" {
		tags = append(tags, fmt.Sprintf("%s:%s", TriggerMedia, slug.Derive(ring.MediaName, "", "")))
	}
	for _, contributor := range ring.Contributors {
		tags = append(tags, fmt.Sprintf("%s:%s", TriggerContributor, slug.Derive(contributor, "", "")))
	}

	payload, err := json.Marshal(invalidateRequest{Tags: tags})
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.secret != "" {
		req.Header.Set("X-Revalidate-Secret", i.secret)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("invalidate: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateFor(ctx context.Context, ring *domain.Ring) error {
	return nil
}
