package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier is the alerting sink for critical-severity events.
type Notifier interface {
	Post(ctx context.Context, subject, message string) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) Post(context.Context, string, string) error {
	return nil
}

// WebhookNotifier posts alerts as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Post(ctx context.Context, subject, message string) error {
	payload, err := json.Marshal(map[string]string{
		"subject": subject,
		"message": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ Notifier = (*NoOpNotifier)(nil)
var _ Notifier = (*WebhookNotifier)(nil)

var Module = fx.Module("notify",
	fx.Provide(NewNotifier),
)

func NewNotifier(log *zap.Logger) Notifier {
	url := strings.TrimSpace(os.Getenv("ALERT_WEBHOOK_URL"))
	if url == "" {
		log.Named("notify").Info("no alert webhook configured, alerts disabled")
		return NoOpNotifier{}
	}
	return NewWebhookNotifier(url)
}
