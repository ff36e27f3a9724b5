package payout

import "context"

// PaymentProcessor initiates a disbursement through an external gateway.
// Initiate returns tracking metadata that is merged into the payout's payment details.
type PaymentProcessor interface {
	Method() PaymentMethod
	Initiate(ctx context.Context, p *Payout) (map[string]any, error)
}

// ProcessorResolver finds the processor for a payment method
type ProcessorResolver interface {
	Resolve(method PaymentMethod) (PaymentProcessor, error)
}
