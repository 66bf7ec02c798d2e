package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelvault/internal/config"
)

const userAgent = "ReelVault/0.1.0"

// Service defines the notification surface exposed to workflow components.
// Implementations are best-effort; callers log failures and move on.
type Service interface {
	NotifyArchiveCompleted(ctx context.Context, title, driveLink string) error
	NotifyArchiveFailed(ctx context.Context, title string, cause error) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		completed: cfg.Notifications.Completed,
		errors:    cfg.Notifications.Errors,
		queue:     cfg.Notifications.Queue,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	completed bool
	errors    bool
	queue     bool
}

func (n *ntfyService) NotifyArchiveCompleted(ctx context.Context, title, driveLink string) error {
	if !n.completed {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Archived: %s", title)
	if driveLink = strings.TrimSpace(driveLink); driveLink != "" {
		message = fmt.Sprintf("%s\n%s", message, driveLink)
	}
	data := payload{
		title:   "ReelVault - Archived",
		message: message,
		tags:    []string{"reelvault", "archive", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyArchiveFailed(ctx context.Context, title string, cause error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Archive failed")
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(": ")
		builder.WriteString(title)
	}
	builder.WriteString("\n")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "ReelVault - Failed",
		message:  builder.String(),
		tags:     []string{"reelvault", "archive", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.queue {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "ReelVault - Queue Drained"
		message = fmt.Sprintf("Queue drained: %d recordings archived in %s", processed, durationText)
	} else {
		title = "ReelVault - Queue Drained (with errors)"
		message = fmt.Sprintf("Queue drained: %d archived, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reelvault", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ReelVault - Test",
		message:  "Notification system test",
		tags:     []string{"reelvault", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyArchiveCompleted(context.Context, string, string) error          { return nil }
func (noopService) NotifyArchiveFailed(context.Context, string, error) error              { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error   { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
