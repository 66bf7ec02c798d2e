package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelvault/internal/config"
	"reelvault/internal/services"
)

// HTTPDoer describes the HTTP client used for uploads.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client defines backup-destination upload behaviour.
type Client interface {
	Upload(ctx context.Context, path, filename string) (string, error)
}

// HTTPClient uploads archives to the backup video host.
type HTTPClient struct {
	uploadURL string
	apiToken  string
	client    HTTPDoer
}

// NewClient constructs a hosting client from configuration. Returns nil when
// the backup destination is disabled; callers treat a nil client as "skip".
func NewClient(cfg *config.Config) *HTTPClient {
	if !cfg.Backup.Enabled {
		return nil
	}
	timeout := time.Duration(cfg.Backup.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return NewHTTPClient(cfg.Backup.UploadURL, cfg.Backup.APIToken, &http.Client{Timeout: timeout})
}

// NewHTTPClient constructs a client with an explicit HTTP doer.
func NewHTTPClient(uploadURL, apiToken string, client HTTPDoer) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		uploadURL: strings.TrimSpace(uploadURL),
		apiToken:  strings.TrimSpace(apiToken),
		client:    client,
	}
}

// Upload streams the file as a multipart POST and returns the hosted link.
func (c *HTTPClient) Upload(ctx context.Context, path, filename string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", services.Wrap(services.ErrValidation, "hosting", "upload", "empty path", nil)
	}
	if strings.TrimSpace(filename) == "" {
		filename = filepath.Base(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "hosting", "upload", "open source", err)
	}
	defer file.Close()

	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err == nil {
			if _, copyErr := io.Copy(part, file); copyErr != nil {
				err = copyErr
			}
		}
		if err == nil {
			err = form.Close()
		}
		writer.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, reader)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "hosting", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "hosting", "upload", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrTransient, "hosting", "upload", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrTransient, "hosting", "upload", "decode response", err)
	}
	if strings.TrimSpace(payload.Link) == "" {
		return "", services.Wrap(services.ErrTransient, "hosting", "upload", "response missing link", nil)
	}
	return payload.Link, nil
}

var _ Client = (*HTTPClient)(nil)
