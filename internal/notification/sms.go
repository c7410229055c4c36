package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://2factor.in/API/V1"
	defaultTimeout = 10 * time.Second
)

// SMSConfig holds SMS gateway configuration. APIKeys is an ordered list of
// delivery credentials tried in sequence.
type SMSConfig struct {
	BaseURL  string
	APIKeys  []string
	SenderID string
	Timeout  time.Duration
}

// SMSService delivers one-time codes over a 2Factor-style SMS HTTP API.
// The first credential to succeed short-circuits; when every credential
// fails the aggregate error is returned. Callers see the whole operation as
// a single fallible call with no partial-success outcome.
type SMSService struct {
	config SMSConfig
	client *http.Client
	logger *slog.Logger
}

// NewSMSService creates a new SMS service.
func NewSMSService(config SMSConfig, logger *slog.Logger) *SMSService {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &SMSService{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type smsResponse struct {
	Status  string `json:"Status"`
	Details string `json:"Details"`
}

// Send delivers the code to the phone number, failing over across the
// configured credentials in order.
func (s *SMSService) Send(ctx context.Context, phone, code string) error {
	if len(s.config.APIKeys) == 0 {
		return errors.New("no sms credentials configured")
	}

	var errs []error
	for i, apiKey := range s.config.APIKeys {
		err := s.sendWithKey(ctx, apiKey, phone, code)
		if err == nil {
			return nil
		}
		s.logger.Warn("sms credential failed", "credential", i+1, "error", err)
		errs = append(errs, fmt.Errorf("credential %d: %w", i+1, err))

		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("all sms credentials failed: %w", errors.Join(errs...))
}

func (s *SMSService) sendWithKey(ctx context.Context, apiKey, phone, code string) error {
	endpoint := fmt.Sprintf("%s/%s/SMS/%s/%s/%s",
		s.config.BaseURL,
		url.PathEscape(apiKey),
		url.PathEscape(phone),
		url.PathEscape(code),
		url.PathEscape(s.config.SenderID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var body smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if body.Status != "Success" {
		return fmt.Errorf("gateway error: %s", body.Details)
	}
	return nil
}
