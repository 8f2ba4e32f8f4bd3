package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/pricing"
)

// CategoryModel is the persistence model for the Category aggregate root.
type CategoryModel struct {
	AggregateModel
	Name    string `gorm:"type:varchar(100);not null"`
	NameKey string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		NameKey:           m.NameKey,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name, NameKey: c.NameKey}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
// CurrentStock and NextExpiryDate mirror the product's supply batches.
type ProductModel struct {
	AggregateModel
	CategoryID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name                  string           `gorm:"type:varchar(200);not null"`
	PictureURL            string           `gorm:"type:varchar(500)"`
	UnitPrice             decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	DiscountMinQty        *int64           `gorm:"column:discount_min_qty"`
	DiscountPercent       *decimal.Decimal `gorm:"type:decimal(7,4)"`
	GlobalDiscountPercent *decimal.Decimal `gorm:"type:decimal(7,4)"`
	CurrentStock          int64            `gorm:"not null;default:0;index"`
	NextExpiryDate        *time.Time       `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		CategoryID:            m.CategoryID,
		Name:                  m.Name,
		PictureURL:            m.PictureURL,
		UnitPrice:             m.UnitPrice,
		GlobalDiscountPercent: m.GlobalDiscountPercent,
		CurrentStock:          m.CurrentStock,
		NextExpiryDate:        m.NextExpiryDate,
	}
	if m.DiscountMinQty != nil && m.DiscountPercent != nil {
		p.DiscountRule = &pricing.DiscountRule{MinQty: *m.DiscountMinQty, Percent: *m.DiscountPercent}
	}
	return p
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		CategoryID:            p.CategoryID,
		Name:                  p.Name,
		PictureURL:            p.PictureURL,
		UnitPrice:             p.UnitPrice,
		GlobalDiscountPercent: p.GlobalDiscountPercent,
		CurrentStock:          p.CurrentStock,
		NextExpiryDate:        p.NextExpiryDate,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	if p.DiscountRule != nil {
		minQty, percent := p.DiscountRule.MinQty, p.DiscountRule.Percent
		m.DiscountMinQty = &minQty
		m.DiscountPercent = &percent
	}
	return m
}
