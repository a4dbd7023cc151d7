package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medledger/api/server"
)

// Client queries the open status endpoints of a running ledger server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}, okStatus ...int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	accepted := resp.StatusCode == http.StatusOK
	for _, s := range okStatus {
		accepted = accepted || resp.StatusCode == s
	}
	if !accepted {
		return fmt.Errorf("%s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}

// GetStatus fetches /status.
func (c *Client) GetStatus(ctx context.Context) (server.StatusResponse, error) {
	var status server.StatusResponse
	err := c.getJSON(ctx, "/status", &status)
	return status, err
}

// GetHealthMetrics fetches /nodehealth.
func (c *Client) GetHealthMetrics(ctx context.Context) (server.NodeHealthResponse, error) {
	var health server.NodeHealthResponse
	err := c.getJSON(ctx, "/nodehealth", &health)
	return health, err
}

func (c *Client) GetLiveness(ctx context.Context) (bool, error) {
	var result server.LivenessResponse
	if err := c.getJSON(ctx, "/health/liveness", &result); err != nil {
		return false, err
	}
	return result.Alive, nil
}

// GetReadiness reports readiness and, when not ready, the server's reason.
// A 503 is a valid answer here, not a transport failure.
func (c *Client) GetReadiness(ctx context.Context) (bool, string, error) {
	var result server.ReadinessResponse
	if err := c.getJSON(ctx, "/health/readiness", &result, http.StatusServiceUnavailable); err != nil {
		return false, "", err
	}
	return result.Ready, result.Reason, nil
}
