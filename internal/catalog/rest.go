package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saravn-ent/tamilring/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to the catalog's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a REST catalog client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Exists checks whether a slug is already cataloged. A 404 is the normal
// negative result.
func (c *Client) Exists(ctx context.Context, slug string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/rings/%s", c.baseURL, url.PathEscape(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("catalog exists: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("catalog exists: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("catalog exists: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// Insert persists a new ring row and returns the catalog's id for it.
func (c *Client) Insert(ctx context.Context, ring *domain.Ring) (string, error) {
	payload, err := json.Marshal(ring)
	if err != nil {
		return "", fmt.Errorf("catalog insert: %w", err)
	}

	endpoint := c.baseURL + "/api/rings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("catalog insert: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalog insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("catalog insert: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("catalog insert: decode response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("catalog insert: response carried no id")
	}
	return created.ID, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
