package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/pricing"
)

// DiscountRuleInput is the tiered volume discount of a product
type DiscountRuleInput struct {
	MinQty  int64           `json:"min_qty" binding:"required,min=1"`
	Percent decimal.Decimal `json:"percent"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	CategoryID            uuid.UUID          `json:"category_id" binding:"required"`
	Name                  string             `json:"name" binding:"required,min=1,max=200"`
	PictureURL            string             `json:"picture_url" binding:"omitempty,url"`
	UnitPrice             decimal.Decimal    `json:"unit_price"`
	DiscountRule          *DiscountRuleInput `json:"discount_rule"`
	GlobalDiscountPercent *decimal.Decimal   `json:"global_discount_percent"`
}

// UpdateProductRequest represents a request to update a product. Unset
// fields keep their value; discounts are replaced as a whole.
type UpdateProductRequest struct {
	CategoryID            *uuid.UUID         `json:"category_id"`
	Name                  *string            `json:"name" binding:"omitempty,min=1,max=200"`
	PictureURL            *string            `json:"picture_url" binding:"omitempty,url"`
	UnitPrice             *decimal.Decimal   `json:"unit_price"`
	DiscountRule          *DiscountRuleInput `json:"discount_rule"`
	GlobalDiscountPercent *decimal.Decimal   `json:"global_discount_percent"`
	ClearDiscounts        bool               `json:"clear_discounts"`
}

// ProductListRequest filters product listings
type ProductListRequest struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"-"` // category_id query parameter, parsed by the handler
	Page       int        `form:"page"`
	Limit      int        `form:"limit"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                    uuid.UUID             `json:"id"`
	CategoryID            uuid.UUID             `json:"category_id"`
	Name                  string                `json:"name"`
	PictureURL            string                `json:"picture_url"`
	UnitPrice             decimal.Decimal       `json:"unit_price"`
	DiscountRule          *pricing.DiscountRule `json:"discount_rule,omitempty"`
	GlobalDiscountPercent *decimal.Decimal      `json:"global_discount_percent,omitempty"`
	CurrentStock          int64                 `json:"current_stock"`
	NextExpiryDate        *time.Time            `json:"next_expiry_date,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                    p.ID,
		CategoryID:            p.CategoryID,
		Name:                  p.Name,
		PictureURL:            p.PictureURL,
		UnitPrice:             p.UnitPrice,
		DiscountRule:          p.DiscountRule,
		GlobalDiscountPercent: p.GlobalDiscountPercent,
		CurrentStock:          p.CurrentStock,
		NextExpiryDate:        p.NextExpiryDate,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCategoryResponse converts a domain category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func (in *DiscountRuleInput) toDomain() *pricing.DiscountRule {
	if in == nil {
		return nil
	}
	return &pricing.DiscountRule{MinQty: in.MinQty, Percent: in.Percent}
}
