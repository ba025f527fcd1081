package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
)

const userAgent = "MelodyMind-Pipeline/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyEpisodeFinished(ctx context.Context, title, episodePath string, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, title string, err error) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		episodeDone: cfg.Notifications.EpisodeDone,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	episodeDone bool
	errors      bool
}

func (n *ntfyService) NotifyEpisodeFinished(ctx context.Context, title, episodePath string, duration time.Duration) error {
	if !n.episodeDone {
		return nil
	}
	title = strings.TrimSpace(title)
	episodePath = strings.TrimSpace(episodePath)

	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	message := fmt.Sprintf("Episode ready: %s (rendered in %s)", title, duration)
	if episodePath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, episodePath)
	}
	data := payload{
		title:    "MelodyMind - Episode Finished",
		message:  message,
		tags:     []string{"melodymind", "episode", "finished"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, title string, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Render failed")
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(" for ")
		builder.WriteString(title)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "MelodyMind - Error",
		message:  builder.String(),
		tags:     []string{"melodymind", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "MelodyMind - Test",
		message:  "Notification system test",
		tags:     []string{"melodymind", "test"},
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

func (noopService) NotifyEpisodeFinished(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
