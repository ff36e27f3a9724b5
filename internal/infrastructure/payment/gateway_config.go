package payment

import (
	"errors"
	"net/url"
	"time"
)

// GatewayConfig holds connection settings for an external disbursement gateway
type GatewayConfig struct {
	// BaseURL is the gateway API root, e.g. https://payouts.example.com/v1
	BaseURL string
	// APIKey authenticates requests and signs request bodies
	APIKey string
	// Timeout bounds each gateway call. Defaults to 30s.
	Timeout time.Duration
}

// Errors for gateway configuration
var (
	ErrGatewayMissingBaseURL = errors.New("payment: missing gateway base URL")
	ErrGatewayInvalidBaseURL = errors.New("payment: gateway base URL must be absolute http(s)")
	ErrGatewayMissingAPIKey  = errors.New("payment: missing gateway API key")
)

// Errors returned by gateway calls
var (
	ErrGatewayUnavailable   = errors.New("payment: gateway unavailable")
	ErrGatewayRequestFailed = errors.New("payment: gateway request failed")
	ErrGatewayRejected      = errors.New("payment: gateway rejected payout")
	ErrGatewayResponseSize  = errors.New("payment: gateway response too large")
)

// IsConfigured reports whether a gateway was set up at all
func (c GatewayConfig) IsConfigured() bool {
	return c.BaseURL != ""
}

// Validate validates the configuration
func (c GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrGatewayMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrGatewayInvalidBaseURL
	}
	if c.APIKey == "" {
		return ErrGatewayMissingAPIKey
	}
	return nil
}

func (c GatewayConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}
