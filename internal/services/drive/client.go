package drive

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

// Client defines primary-destination upload behaviour.
type Client interface {
	Upload(ctx context.Context, path, filename string) (string, error)
}

// HTTPClient uploads archives to the configured drive endpoint.
type HTTPClient struct {
	uploadURL string
	apiToken  string
	folderID  string
	client    HTTPDoer
}

// NewClient constructs a drive client from configuration.
func NewClient(cfg *config.Config) *HTTPClient {
	timeout := time.Duration(cfg.Drive.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return NewHTTPClient(cfg.Drive.UploadURL, cfg.Drive.APIToken, cfg.Drive.FolderID, &http.Client{Timeout: timeout})
}

// NewHTTPClient constructs a client with an explicit HTTP doer.
func NewHTTPClient(uploadURL, apiToken, folderID string, client HTTPDoer) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		uploadURL: strings.TrimSpace(uploadURL),
		apiToken:  strings.TrimSpace(apiToken),
		folderID:  strings.TrimSpace(folderID),
		client:    client,
	}
}

// Upload streams the file as a multipart POST and returns the shareable link
// reported by the endpoint.
func (c *HTTPClient) Upload(ctx context.Context, path, filename string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", services.Wrap(services.ErrValidation, "drive", "upload", "empty path", nil)
	}
	if strings.TrimSpace(filename) == "" {
		filename = filepath.Base(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "drive", "upload", "open source", err)
	}
	defer file.Close()

	// Stream the multipart body through a pipe so large archives never
	// buffer fully in memory.
	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		err := writeForm(form, file, filename, c.folderID)
		writer.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, reader)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "drive", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "drive", "upload", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrTransient, "drive", "upload", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrTransient, "drive", "upload", "decode response", err)
	}
	if strings.TrimSpace(payload.Link) == "" {
		return "", services.Wrap(services.ErrTransient, "drive", "upload", "response missing link", nil)
	}
	return payload.Link, nil
}

func writeForm(form *multipart.Writer, file io.Reader, filename, folderID string) error {
	if folderID != "" {
		if err := form.WriteField("folder_id", folderID); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return form.Close()
}

var _ Client = (*HTTPClient)(nil)
