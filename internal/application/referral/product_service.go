package referral

import (
	"context"

	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductService manages the products partners refer clients for
type ProductService struct {
	productRepo referral.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo referral.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create adds a product. Staff only.
// A commission or price that cannot be parsed is accepted but logged, since
// referral estimates for it will stay at zero.
func (s *ProductService) Create(ctx context.Context, actor shared.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	product, err := referral.NewProduct(req.Name, req.Description, req.Commission, req.Price)
	if err != nil {
		return nil, err
	}
	if _, err := product.EstimateCommission(); err != nil {
		logger.L(ctx).Warn("Product commission is not computable",
			zap.String("name", product.Name),
			zap.Error(err),
		)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns products; non-staff callers only see active ones
func (s *ProductService) List(ctx context.Context, actor shared.Actor) ([]ProductResponse, error) {
	products, err := s.productRepo.List(ctx, !actor.IsStaff)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses, nil
}
