package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Fast2SMS sends SMS through the Fast2SMS bulk API (the cheaper gateway for
// Indian numbers).
type Fast2SMS struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewFast2SMS creates a Fast2SMS client.
func NewFast2SMS(apiKey string, timeout time.Duration, logger *slog.Logger) *Fast2SMS {
	return &Fast2SMS{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://www.fast2sms.com",
		logger:  logger,
	}
}

func (f *Fast2SMS) Name() string { return "fast2sms" }

type fast2smsRequest struct {
	Route   string `json:"route"`
	Message string `json:"message"`
	Numbers string `json:"numbers"`
}

type fast2smsResponse struct {
	Return  bool            `json:"return"`
	Message json.RawMessage `json:"message"`
}

// Send posts a JSON request on the quick-SMS route. Fast2SMS expects the
// bare 10-digit number, so the +91 prefix is stripped.
func (f *Fast2SMS) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(fast2smsRequest{
		Route:   "q",
		Message: body,
		Numbers: strings.TrimPrefix(to, "+91"),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/dev/bulkV2", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authorization", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fast2sms request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fast2sms: status %d: %s", resp.StatusCode, raw)
	}

	var apiResp fast2smsResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("fast2sms: decode response: %w", err)
	}
	if !apiResp.Return {
		return fmt.Errorf("fast2sms: gateway rejected message: %s", apiResp.Message)
	}
	return nil
}
