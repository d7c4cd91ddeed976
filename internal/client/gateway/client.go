// Package gateway provides a client for the alert gateway API.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"hostmon/internal/config"
	"hostmon/internal/model"
)

// eventsPath is the gateway endpoint accepting alert events.
const eventsPath = "/api/v1/events"

// Client is a client for the alert gateway API. Delivery is fire-and-forget
// from the monitor's point of view; retry and backoff live here.
type Client struct {
	endpoint   string             // Gateway base URL
	timeout    time.Duration      // Request timeout
	retry      config.RetryConfig // Retry configuration
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewClient creates a new alert gateway client for the configured host+port.
func NewClient(cfg *config.GatewayConfig, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	// Set default retry config if not specified
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	endpoint := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)

	// Create resty client
	httpClient := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "gateway-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	// Retry on error (timeout, connection failure, etc.)
	if err != nil {
		return true
	}

	// Retry on 5xx server errors
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}

	// Do not retry on 4xx client errors
	return false
}

// SendEvent delivers a single alert event to the gateway.
func (c *Client) SendEvent(ctx context.Context, event *model.AlertEvent) error {
	c.logger.Debug().
		Str("service", event.Service).
		Str("state", string(event.State)).
		Msg("sending alert event")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(eventsPath)

	if err != nil {
		c.logger.Error().Err(err).Str("service", event.Service).Msg("failed to send alert event")
		return fmt.Errorf("failed to send alert event for %s: %w", event.Service, err)
	}

	if resp.IsError() {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("service", event.Service).
			Str("body", string(resp.Body())).
			Msg("gateway returned error status")
		return fmt.Errorf("gateway returned status %d for %s: %s",
			resp.StatusCode(), event.Service, string(resp.Body()))
	}

	c.logger.Debug().Str("service", event.Service).Msg("alert event sent")
	return nil
}

// Endpoint returns the gateway base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}
