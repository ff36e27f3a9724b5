package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	gatewayPayoutPath = "/payouts"
	payoutCurrency    = "USD"

	// maxGatewayResponseSize caps how much of a gateway reply is read
	maxGatewayResponseSize = 1 << 20
)

// GatewayProcessor disburses payouts through a JSON HTTP gateway.
// Each request carries a bearer key, an HMAC-SHA256 body signature and the payout
// id as Idempotency-Key, so a retried Process call cannot pay twice.
type GatewayProcessor struct {
	method     payout.PaymentMethod
	config     GatewayConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewGatewayProcessor creates a gateway-backed processor for one payment method
func NewGatewayProcessor(method payout.PaymentMethod, config GatewayConfig) (*GatewayProcessor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &GatewayProcessor{
		method:     method,
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
		now:        time.Now,
	}, nil
}

// Method returns the payment method served
func (g *GatewayProcessor) Method() payout.PaymentMethod {
	return g.method
}

// Initiate submits the payout and returns the gateway's tracking data
func (g *GatewayProcessor) Initiate(ctx context.Context, p *payout.Payout) (map[string]any, error) {
	body, err := json.Marshal(gatewayPayoutRequest{
		Reference:   p.ID,
		Amount:      p.Amount.StringFixed(2),
		Currency:    payoutCurrency,
		Method:      string(g.method),
		Destination: p.PaymentDetails,
		Description: fmt.Sprintf("Affiliate payout %s", p.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request: %w", g.method, err)
	}

	respBody, err := g.doRequest(ctx, p.ID, body)
	if err != nil {
		return nil, err
	}

	var resp gatewayPayoutResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", g.method, err)
	}
	if rejectedStatuses[resp.Status] {
		return nil, fmt.Errorf("%w: status %s", ErrGatewayRejected, resp.Status)
	}

	logger.L(ctx).Info("Payout submitted to gateway",
		zap.String("payout_id", p.ID),
		zap.String("payment_method", string(g.method)),
		zap.String("gateway_reference", resp.ID),
		zap.String("gateway_status", resp.Status),
	)
	return map[string]any{
		"gateway":           string(g.method),
		"gateway_reference": resp.ID,
		"gateway_status":    resp.Status,
	}, nil
}

// doRequest POSTs a signed body to the gateway
func (g *GatewayProcessor) doRequest(ctx context.Context, idempotencyKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+gatewayPayoutPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", g.method, err)
	}

	timestamp := strconv.FormatInt(g.now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", Sign(g.config.APIKey, timestamp, body))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", g.method, err)
	}
	if len(respBody) > maxGatewayResponseSize {
		return nil, fmt.Errorf("%w: %s reply exceeds %d bytes", ErrGatewayResponseSize, g.method, maxGatewayResponseSize)
	}

	if resp.StatusCode >= 400 {
		var errResp gatewayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrGatewayRequestFailed, errResp.Code, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}
	return respBody, nil
}

// Sign computes the hex HMAC-SHA256 of "<timestamp>\n<body>" with the API key
func Sign(key, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ payout.PaymentProcessor = (*GatewayProcessor)(nil)
