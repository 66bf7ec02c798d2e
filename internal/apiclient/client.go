// Package apiclient provides the HTTP client used by the reelvault CLI to
// talk to a running daemon's JSON API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelvault/internal/daemon"
	"reelvault/internal/queue"
)

// Client is a thin wrapper over the daemon's JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New constructs a client for the daemon listening at bind (host:port).
func New(bind, token string) *Client {
	return &Client{
		baseURL: "http://" + strings.TrimSpace(bind),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping reports whether the daemon is reachable. It uses a short deadline so
// CLI commands can fall back to direct store access quickly.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var status daemon.Status
	return c.do(ctx, http.MethodGet, "/api/status", nil, &status) == nil
}

// Status fetches the daemon's runtime status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var status daemon.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

// Queue lists queue items, optionally filtered by status.
func (c *Client) Queue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	path := "/api/queue"
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, status := range statuses {
			values[i] = string(status)
		}
		path += "?status=" + strings.Join(values, ",")
	}
	var payload struct {
		Items []*queue.Item `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// Health fetches aggregate queue counts.
func (c *Client) Health(ctx context.Context) (queue.HealthSummary, error) {
	var health queue.HealthSummary
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &health)
	return health, err
}

// Add enqueues a recording through the daemon.
func (c *Client) Add(ctx context.Context, sourcePath string, interviewID int64) (*queue.Item, error) {
	body := map[string]any{"source_path": sourcePath, "interview_id": interviewID}
	var item queue.Item
	if err := c.do(ctx, http.MethodPost, "/api/queue/add", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ClearCompleted removes completed queue items and returns the count.
func (c *Client) ClearCompleted(ctx context.Context) (int64, error) {
	var payload struct {
		Removed int64 `json:"removed"`
	}
	err := c.do(ctx, http.MethodPost, "/api/queue/clear-completed", nil, &payload)
	return payload.Removed, err
}

// TestNotification asks the daemon to send a test notification.
func (c *Client) TestNotification(ctx context.Context) (bool, string, error) {
	var payload struct {
		Sent    bool   `json:"sent"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/test-notification", nil, &payload); err != nil {
		return false, "", err
	}
	if payload.Error != "" {
		return payload.Sent, payload.Message, fmt.Errorf("%s", payload.Error)
	}
	return payload.Sent, payload.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
