package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aryaveer-14/civic-mind/config"
)

// SMSSender delivers one-time codes. Degraded reports whether delivery is
// simulated; handlers echo the OTP back to the caller only in degraded mode.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
	Degraded() bool
}

// NewSMSSender returns a Twilio-backed sender when credentials are
// configured and a console sender otherwise.
func NewSMSSender() SMSSender {
	if config.AppConfig.HasTwilio() {
		log.Println("📱 SMS delivery via Twilio enabled")
		return &TwilioSender{
			accountSID: config.AppConfig.Twilio.AccountSID,
			authToken:  config.AppConfig.Twilio.AuthToken,
			from:       config.AppConfig.Twilio.PhoneNumber,
			baseURL:    "https://api.twilio.com/2010-04-01",
			client:     &http.Client{Timeout: 5 * time.Second},
		}
	}
	log.Println("⚠️ Twilio not configured, SMS will be logged to console")
	return &ConsoleSender{}
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func (t *TwilioSender) Degraded() bool { return false }

func (t *TwilioSender) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, string(payload))
	}

	log.Printf("📤 SMS sent to %s", to)
	return nil
}

// ConsoleSender logs the message instead of delivering it. Used when Twilio
// credentials are absent so local development works without an account.
type ConsoleSender struct{}

func (c *ConsoleSender) Degraded() bool { return true }

func (c *ConsoleSender) Send(ctx context.Context, to, body string) error {
	log.Printf("📱 [console SMS] to=%s body=%q", to, body)
	return nil
}
