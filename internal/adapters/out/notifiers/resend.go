// Package notifiers delivers delay messages to customers. Each notifier
// serves one channel and reports provider rejections that retrying cannot
// fix as ports.PermanentError.
package notifiers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	defaultResendBaseURL = "https://api.resend.com"
	defaultHTTPTimeout   = 10 * time.Second
)

type ResendConfig struct {
	APIKey  string
	From    string
	BaseURL string
	Timeout time.Duration
}

// Resend sends email through the Resend API. The idempotency key is passed
// through, so a retried send of the same notification is dropped by Resend.
type Resend struct {
	client *resty.Client
	from   string
}

func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" || cfg.From == "" {
		return nil, errors.New("resend api key and sender are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultResendBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Resend{client: client, from: cfg.From}, nil
}

func (r *Resend) Channel() notification.Channel { return notification.ChannelEmail }

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (r *Resend) Send(ctx context.Context, msg ports.OutgoingMessage) (string, error) {
	req := r.client.R().
		SetContext(ctx).
		SetBody(resendEmail{
			From:    r.from,
			To:      []string{msg.Recipient},
			Subject: msg.Subject,
			Text:    msg.Body,
		})
	if msg.IdempotencyKey != "" {
		req.SetHeader("Idempotency-Key", msg.IdempotencyKey)
	}

	resp, err := req.Post("/emails")
	if err != nil {
		return "", fmt.Errorf("resend request: %w", err)
	}

	body := resp.Body()
	if resp.IsError() {
		reason := gjson.GetBytes(body, "message").String()
		if reason == "" {
			reason = resp.Status()
		}
		cause := fmt.Errorf("resend returned http %d", resp.StatusCode())
		if isPermanentStatus(resp.StatusCode()) {
			return "", ports.NewPermanentError(notification.ChannelEmail, reason, cause)
		}
		return "", fmt.Errorf("%w: %s", cause, reason)
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", errors.New("resend response has no message id")
	}
	return id, nil
}

// isPermanentStatus reports provider answers that will not change on retry.
func isPermanentStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	default:
		return false
	}
}
