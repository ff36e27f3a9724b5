package payment

import (
	"context"
	"time"

	"github.com/affiliate/backend/internal/domain/payout"
)

const referenceTimeLayout = "20060102150405"

// manualReference is the payment detail a method's manual processor stamps on a payout
type manualReference struct {
	key    string
	prefix string
}

var manualReferences = map[payout.PaymentMethod]manualReference{
	payout.MethodBank:   {key: "processing_id", prefix: "BT-"},
	payout.MethodPayPal: {key: "paypal_batch_id", prefix: "PP-"},
	payout.MethodMpesa:  {key: "mpesa_reference", prefix: "MP"},
	payout.MethodStripe: {key: "stripe_transfer_ref", prefix: "ST-"},
	payout.MethodCrypto: {key: "crypto_request_id", prefix: "CR-"},
}

// ManualProcessor hands a payout to finance staff for an out-of-band transfer.
// It stamps the method's processing reference and initiation time; staff complete
// the payout with the transaction id once the money has moved.
type ManualProcessor struct {
	method payout.PaymentMethod
	ref    manualReference
	now    func() time.Time
}

// NewManualProcessor creates a manual processor for method
func NewManualProcessor(method payout.PaymentMethod) *ManualProcessor {
	ref, ok := manualReferences[method]
	if !ok {
		ref = manualReference{key: "processing_id", prefix: "MAN-"}
	}
	return &ManualProcessor{method: method, ref: ref, now: time.Now}
}

// Method returns the payment method served
func (m *ManualProcessor) Method() payout.PaymentMethod {
	return m.method
}

// Initiate returns the processing reference and initiated_at timestamp
func (m *ManualProcessor) Initiate(_ context.Context, p *payout.Payout) (map[string]any, error) {
	now := m.now().UTC()
	return map[string]any{
		m.ref.key:      m.ref.prefix + now.Format(referenceTimeLayout),
		"initiated_at": now.Format(time.RFC3339),
		"settlement":   "manual",
	}, nil
}

var _ payout.PaymentProcessor = (*ManualProcessor)(nil)
