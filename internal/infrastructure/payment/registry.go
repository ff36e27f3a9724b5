package payment

import (
	"fmt"
	"sync"

	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Registry maps payment methods to processors
type Registry struct {
	mu         sync.RWMutex
	processors map[payout.PaymentMethod]payout.PaymentProcessor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{processors: make(map[payout.PaymentMethod]payout.PaymentProcessor)}
}

// Register adds or replaces the processor for its method
func (r *Registry) Register(p payout.PaymentProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[p.Method()] = p
}

// Resolve returns the processor for method
func (r *Registry) Resolve(method payout.PaymentMethod) (payout.PaymentProcessor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[method]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeUnsupportedMethod,
			fmt.Sprintf("No payment processor for method: %s", method))
	}
	return p, nil
}

// Methods returns the registered methods in display order
func (r *Registry) Methods() []payout.PaymentMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payout.PaymentMethod
	for _, m := range payout.AllPaymentMethods {
		if _, ok := r.processors[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// NewDefaultRegistry registers a processor for every payment method. Methods with a
// configured gateway get a GatewayProcessor, the rest are settled manually.
func NewDefaultRegistry(gateways map[payout.PaymentMethod]GatewayConfig, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry()
	for _, method := range payout.AllPaymentMethods {
		cfg, ok := gateways[method]
		if !ok || !cfg.IsConfigured() {
			r.Register(NewManualProcessor(method))
			continue
		}
		gp, err := NewGatewayProcessor(method, cfg)
		if err != nil {
			return nil, err
		}
		r.Register(gp)
		logger.Info("Payment gateway configured",
			zap.String("payment_method", string(method)),
			zap.String("base_url", cfg.BaseURL),
		)
	}
	return r, nil
}

var _ payout.ProcessorResolver = (*Registry)(nil)
