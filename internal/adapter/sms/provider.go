// Package sms implements the outbound SMS gateway clients.
package sms

import (
	"context"
	"log/slog"

	"github.com/seismoindia/quake-data-service/internal/config"
)

// Provider sends a single SMS. Implementations wrap one vendor API.
type Provider interface {
	// Send delivers body to an E.164 +91 number.
	Send(ctx context.Context, to, body string) error

	// Name identifies the provider in logs and metrics.
	Name() string
}

// FromConfig selects the configured provider: Twilio when all three of its
// credentials are set, else Fast2SMS when its key is set, else nil (SMS
// disabled; the HTTP handler answers 503).
func FromConfig(cfg *config.Config, logger *slog.Logger) Provider {
	if cfg.TwilioConfigured() {
		return NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.SMSTimeout, logger)
	}
	if cfg.Fast2SMSAPIKey != "" {
		return NewFast2SMS(cfg.Fast2SMSAPIKey, cfg.SMSTimeout, logger)
	}
	return nil
}
