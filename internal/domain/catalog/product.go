package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/pricing"
	"github.com/stockroute/backend/internal/domain/shared"
)

// DefaultPictureURL is shown for products created without a picture
const DefaultPictureURL = "https://placehold.co/400x400"

// Product is a sellable item. CurrentStock and NextExpiryDate are derived
// from the product's supply batches and only the batch ledger writes them.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID            uuid.UUID
	Name                  string
	PictureURL            string
	UnitPrice             decimal.Decimal
	DiscountRule          *pricing.DiscountRule
	GlobalDiscountPercent *decimal.Decimal
	CurrentStock          int64
	NextExpiryDate        *time.Time
}

// NewProduct creates a product with no stock
func NewProduct(categoryID uuid.UUID, name string, unitPrice decimal.Decimal) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PictureURL:        DefaultPictureURL,
	}
	if err := p.apply(categoryID, name, unitPrice); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes the descriptive and price attributes
func (p *Product) Update(categoryID uuid.UUID, name string, unitPrice decimal.Decimal) error {
	if err := p.apply(categoryID, name, unitPrice); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Product) apply(categoryID uuid.UUID, name string, unitPrice decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("product name cannot exceed 200 characters")
	}
	if categoryID == uuid.Nil {
		return shared.NewValidationError("product category is required")
	}
	if !unitPrice.IsPositive() {
		return shared.NewValidationError("unit price must be positive")
	}
	p.CategoryID = categoryID
	p.Name = name
	p.UnitPrice = unitPrice
	return nil
}

// SetDiscounts replaces the volume rule and the global discount. Each
// percent must lie in [0, 100].
func (p *Product) SetDiscounts(rule *pricing.DiscountRule, global *decimal.Decimal) error {
	if rule != nil {
		if rule.MinQty < 1 {
			return shared.NewValidationError("discount rule minimum quantity must be at least 1")
		}
		if !pricing.ValidatePercent(rule.Percent) {
			return shared.NewValidationError("discount rule percent must be between 0 and 100")
		}
	}
	if global != nil && !pricing.ValidatePercent(*global) {
		return shared.NewValidationError("global discount percent must be between 0 and 100")
	}
	p.DiscountRule = rule
	p.GlobalDiscountPercent = global
	p.Touch()
	return nil
}

// SetPicture sets the picture URL, falling back to the placeholder
func (p *Product) SetPicture(url string) {
	if strings.TrimSpace(url) == "" {
		url = DefaultPictureURL
	}
	p.PictureURL = url
}

// PricingTerms exposes the attributes the pricing engine needs
func (p *Product) PricingTerms() pricing.Terms {
	return pricing.Terms{
		UnitPrice:             p.UnitPrice,
		Rule:                  p.DiscountRule,
		GlobalDiscountPercent: p.GlobalDiscountPercent,
	}
}

// HasStock is the advisory availability check used before consuming
func (p *Product) HasStock(quantity int64) bool {
	return p.CurrentStock >= quantity
}
