package internal

import (
	"applepay/config"
	"applepay/entity"
	"applepay/services"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const signatureHeader = "X-Notification-Signature"

// Forwarder delivers notification payloads to the configured webhook URL.
// Delivery is best-effort, at-most-once: a network error or non-2xx response
// is logged and never retried, and the payload commonly lands on a throwaway
// inspection endpoint rather than a durable sink.
type Forwarder struct {
	conf       *config.Config
	logger     services.LogHandler
	signer     *Signer
	httpClient *http.Client
}

func NewForwarder(conf *config.Config) *Forwarder {
	timeout := time.Duration(conf.Forwarder.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		conf:   conf,
		signer: NewSigner(conf.Forwarder.Secret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *Forwarder) SetLogger(logger services.LogHandler) {
	f.logger = logger
	if f.conf.Forwarder.Url == "" {
		f.logger.Warn("webhook url not configured, notifications will be dropped")
	}
}

// Forward issues a single POST of the notification to the webhook URL.
// When a signing secret is configured, the payload signature travels in the
// X-Notification-Signature header so the receiver can verify it.
func (f *Forwarder) Forward(ctx context.Context, notification *entity.Notification) error {
	if f.conf.Forwarder.Url == "" {
		f.logger.Debug("no webhook url, notification dropped")
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.conf.Forwarder.Url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.signer.Enabled() {
		signature, err := f.signer.Sign(payload)
		if err != nil {
			f.logger.Error("sign notification", err)
		} else {
			req.Header.Set(signatureHeader, signature)
		}
	}

	response, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if e := Body.Close(); e != nil {
			f.logger.Error("close response body", e)
		}
	}(response.Body)

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("webhook responded %d: %s", response.StatusCode, string(body))
	}

	f.logger.Debug(fmt.Sprintf("notification %s delivered", notification.EventType))
	return nil
}
