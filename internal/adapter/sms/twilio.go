package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Twilio sends SMS through the Twilio Messages REST API.
type Twilio struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewTwilio creates a Twilio client. from is the sending number in E.164.
func NewTwilio(accountSID, authToken, from string, timeout time.Duration, logger *slog.Logger) *Twilio {
	return &Twilio{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.twilio.com",
		logger:  logger,
	}
}

func (t *Twilio) Name() string { return "twilio" }

// Send posts a form-encoded message create request. Twilio's per-request
// error codes are folded into the returned error text so the HTTP layer can
// surface a readable message.
func (t *Twilio) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, url.PathEscape(t.accountSID))

	form := url.Values{
		"To":   {to},
		"From": {t.from},
		"Body": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	var apiErr twilioError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Code != 0 {
		return fmt.Errorf("twilio: %s", describeTwilioError(apiErr))
	}
	return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, raw)
}

// twilioError is Twilio's JSON error envelope.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// describeTwilioError maps the vendor codes users actually hit to readable
// strings; anything else passes the vendor message through.
func describeTwilioError(e twilioError) string {
	switch e.Code {
	case 20003:
		return "authentication failed, check account SID and auth token"
	case 21211:
		return "the destination phone number is invalid"
	case 21408:
		return "SMS to this region is not enabled on the account"
	case 21608:
		return "the destination number is unverified on this trial account"
	case 21610:
		return "the destination number has opted out of messages"
	default:
		return fmt.Sprintf("error %d: %s", e.Code, e.Message)
	}
}
