package notifiers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const defaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	Timeout    time.Duration
}

// Twilio sends SMS through the Programmable Messaging API.
type Twilio struct {
	client     *resty.Client
	accountSID string
	from       string
}

func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, errors.New("twilio account sid, auth token and sender are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTwilioBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Twilio{client: client, accountSID: cfg.AccountSID, from: cfg.From}, nil
}

func (t *Twilio) Channel() notification.Channel { return notification.ChannelSMS }

func (t *Twilio) Send(ctx context.Context, msg ports.OutgoingMessage) (string, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("sid", t.accountSID).
		SetFormData(map[string]string{
			"To":   msg.Recipient,
			"From": t.from,
			"Body": msg.Body,
		}).
		Post("/Accounts/{sid}/Messages.json")
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}

	body := resp.Body()
	if resp.IsError() {
		reason := gjson.GetBytes(body, "message").String()
		if code := gjson.GetBytes(body, "code"); code.Exists() {
			reason = fmt.Sprintf("%s (code %d)", reason, code.Int())
		}
		cause := fmt.Errorf("twilio returned http %d", resp.StatusCode())
		if isPermanentStatus(resp.StatusCode()) {
			return "", ports.NewPermanentError(notification.ChannelSMS, reason, cause)
		}
		return "", fmt.Errorf("%w: %s", cause, reason)
	}

	sid := gjson.GetBytes(body, "sid").String()
	if sid == "" {
		return "", errors.New("twilio response has no message sid")
	}
	return sid, nil
}
