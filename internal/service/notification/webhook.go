package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier 以 json POST 方式投递消息
type WebhookNotifier struct {
	url    string
	target string
	cli    *http.Client
}

type webhookPayload struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

func NewWebhookNotifier(url, target string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		target: target,
		cli:    &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Name() string {
	return "webhook"
}

func (n *WebhookNotifier) Notify(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookPayload{Target: n.target, Message: message})
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrNotify, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNotify, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.cli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned status %d", ErrNotify, resp.StatusCode)
	}
	return nil
}
