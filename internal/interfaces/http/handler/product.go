package handler

import (
	referralapp "github.com/affiliate/backend/internal/application/referral"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles the referable product catalog
type ProductHandler struct {
	BaseHandler
	products *referralapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *referralapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List returns the products partners can refer
func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	products, err := h.products.List(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Create adds a product
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req referralapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}
