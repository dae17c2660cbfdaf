package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

// ConsoleNotifier logs alerts through the structured logger.
type ConsoleNotifier struct {
	log *logrus.Logger
}

func NewConsoleNotifier(log *logrus.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) Send(_ context.Context, a models.Alert) error {
	entry := c.log.WithFields(logrus.Fields{
		"alert_id": a.ID,
		"source":   a.Source,
		"severity": a.Severity,
	})
	switch a.Severity {
	case models.SeverityCritical:
		entry.Errorf("ALERT: %s - %s", a.Title, a.Message)
	case models.SeverityWarning:
		entry.Warnf("ALERT: %s - %s", a.Title, a.Message)
	default:
		entry.Infof("ALERT: %s - %s", a.Title, a.Message)
	}
	return nil
}

// WebhookNotifier posts alerts as JSON to a webhook URL. It backs both the
// Slack and pager channels; the payload shape differs per flavor.
type WebhookNotifier struct {
	url    string
	flavor string // "slack" or "pager"
	client *http.Client
}

func NewSlackNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{url: webhookURL, flavor: "slack", client: &http.Client{Timeout: 10 * time.Second}}
}

func NewPagerNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{url: webhookURL, flavor: "pager", client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebhookNotifier) Send(ctx context.Context, a models.Alert) error {
	if w.url == "" {
		return fmt.Errorf("%s webhook url not configured", w.flavor)
	}

	var payload interface{}
	if w.flavor == "slack" {
		payload = map[string]string{
			"text": fmt.Sprintf("[%s] %s\n%s (source: %s)", a.Severity, a.Title, a.Message, a.Source),
		}
	} else {
		payload = a
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", w.flavor, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.flavor, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", w.flavor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s webhook returned status %d", w.flavor, resp.StatusCode)
	}
	return nil
}
