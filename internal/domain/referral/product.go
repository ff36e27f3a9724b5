package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrUnparsableCommission is returned when a product's commission or price is not numeric
var ErrUnparsableCommission = errors.New("product commission or price is not numeric")

// Product is a sellable offering partners refer clients for.
// Commission and Price are free-text as entered by staff, e.g. "10%" and "1000".
type Product struct {
	ID          int64
	Name        string
	Description string
	Commission  string
	Price       string
	Active      bool
}

// NewProduct creates an active product
func NewProduct(name, description, commission, price string) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Product name is required",
			shared.FieldError{Field: "name", Message: "This field is required."})
	}
	return &Product{
		Name:        strings.TrimSpace(name),
		Description: description,
		Commission:  strings.TrimSpace(commission),
		Price:       strings.TrimSpace(price),
		Active:      true,
	}, nil
}

// EstimateCommission returns commission% × price for the product
func (p *Product) EstimateCommission() (decimal.Decimal, error) {
	return ComputePotentialCommission(p.Commission, p.Price)
}

// ComputePotentialCommission parses a percentage like "10%" and a price like "1000"
// and returns the commission amount rounded to two decimals.
func ComputePotentialCommission(commission, price string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.Trim(strings.TrimSpace(commission), "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: commission %q", ErrUnparsableCommission, commission)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q", ErrUnparsableCommission, price)
	}
	return rate.Div(decimal.NewFromInt(100)).Mul(amount).Round(shared.MoneyScale), nil
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]*Product, error)
	Save(ctx context.Context, product *Product) error
}
