package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelvault/internal/config"
	"reelvault/internal/services"
)

// HTTPDoer describes the HTTP client used by the record store service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Interview holds the candidate record fields the pipeline needs to name and
// archive a recording.
type Interview struct {
	InterviewID   int64  `json:"interview_id"`
	CandidateName string `json:"candidate_name"`
	Company       string `json:"company"`
	InterviewType string `json:"interview_type"`
	InterviewDate string `json:"interview_date"`
	RecordingLink string `json:"recording_link"`
	Archived      bool   `json:"archived"`
}

// Links carries the destination links written back after a successful archive.
// Backup and Transcript are nil when those stages were skipped.
type Links struct {
	Primary    string
	Backup     *string
	Transcript *string
}

// Client defines record store behaviour.
type Client interface {
	GetDetails(ctx context.Context, interviewID int64) (Interview, error)
	WriteBack(ctx context.Context, interviewID int64, links Links, filename string) error
}

// HTTPClient talks to the record store REST API.
type HTTPClient struct {
	baseURL  string
	apiToken string
	client   HTTPDoer
}

// NewClient constructs a record store client from configuration.
func NewClient(cfg *config.Config) *HTTPClient {
	timeout := time.Duration(cfg.RecordStore.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewHTTPClient(cfg.RecordStore.BaseURL, cfg.RecordStore.APIToken, &http.Client{Timeout: timeout})
}

// NewHTTPClient constructs a client with an explicit HTTP doer.
func NewHTTPClient(baseURL, apiToken string, client HTTPDoer) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiToken: strings.TrimSpace(apiToken),
		client:   client,
	}
}

// GetDetails fetches the interview record. Missing records map to
// services.ErrNotFound; records already archived map to
// services.ErrAlreadyArchived so intake can fail fast without enqueueing.
func (c *HTTPClient) GetDetails(ctx context.Context, interviewID int64) (Interview, error) {
	url := fmt.Sprintf("%s/api/interviews/%d", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Interview{}, services.Wrap(services.ErrTransient, "recordstore", "get details", "build request", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return Interview{}, services.Wrap(services.ErrTransient, "recordstore", "get details", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Interview{}, services.Wrap(services.ErrNotFound, "recordstore", "get details", fmt.Sprintf("interview %d", interviewID), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return Interview{}, services.Wrap(services.ErrTransient, "recordstore", "get details", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var record Interview
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Interview{}, services.Wrap(services.ErrTransient, "recordstore", "get details", "decode response", err)
	}
	if record.Archived {
		return Interview{}, services.Wrap(services.ErrAlreadyArchived, "recordstore", "get details", fmt.Sprintf("interview %d", interviewID), nil)
	}
	return record, nil
}

// WriteBack records the archive result on the interview. Null backup and
// transcript links are sent explicitly so the store clears stale values.
func (c *HTTPClient) WriteBack(ctx context.Context, interviewID int64, links Links, filename string) error {
	payload := map[string]any{
		"drive_link":        links.Primary,
		"backup_link":       nil,
		"transcript_link":   nil,
		"archived_filename": filename,
		"archived":          true,
	}
	if links.Backup != nil {
		payload["backup_link"] = *links.Backup
	}
	if links.Transcript != nil {
		payload["transcript_link"] = *links.Transcript
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrTransient, "recordstore", "write back", "encode payload", err)
	}

	url := fmt.Sprintf("%s/api/interviews/%d/archive", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransient, "recordstore", "write back", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "recordstore", "write back", "request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "recordstore", "write back", fmt.Sprintf("interview %d", interviewID), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return services.Wrap(services.ErrTransient, "recordstore", "write back", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}

var _ Client = (*HTTPClient)(nil)
