package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/sales"
)

// LineItemJSON is the stored shape of a sale or return line
type LineItemJSON struct {
	ProductID       uuid.UUID       `json:"product_id"`
	SoldBy          string          `json:"sold_by"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Total           decimal.Decimal `json:"total"`
}

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	SaleNumber     string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	Date           time.Time            `gorm:"not null;index"`
	ClientID       *uuid.UUID           `gorm:"type:uuid;index"`
	SellerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	DeliveryManID  *uuid.UUID           `gorm:"type:uuid;index"`
	Instant        bool                 `gorm:"not null;default:false"`
	Items          string               `gorm:"type:jsonb;not null"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	DeliveryStatus sales.DeliveryStatus `gorm:"type:varchar(20);not null;index"`
	ReturnItems    string               `gorm:"type:jsonb;not null"`
	ReturnTotal    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnGlobal   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentMethod  sales.PaymentMethod  `gorm:"type:varchar(20);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	InvoiceURL     *string              `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() (*sales.Sale, error) {
	items, err := decodeLineItems(m.Items)
	if err != nil {
		return nil, err
	}
	returned, err := decodeLineItems(m.ReturnItems)
	if err != nil {
		return nil, err
	}
	return &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleNumber:        m.SaleNumber,
		Date:              m.Date,
		ClientID:          m.ClientID,
		SellerID:          m.SellerID,
		DeliveryManID:     m.DeliveryManID,
		Instant:           m.Instant,
		Items:             items,
		TotalAmount:       m.TotalAmount,
		DeliveryStatus:    m.DeliveryStatus,
		Return:            sales.ReturnRecord{Items: returned, Total: m.ReturnTotal},
		ReturnGlobal:      m.ReturnGlobal,
		NetAmount:         m.NetAmount,
		PaymentMethod:     m.PaymentMethod,
		AmountPaid:        m.AmountPaid,
		InvoiceURL:        m.InvoiceURL,
	}, nil
}

// SaleModelFromDomain creates a persistence model from a domain Sale.
func SaleModelFromDomain(s *sales.Sale) (*SaleModel, error) {
	items, err := encodeLineItems(s.Items)
	if err != nil {
		return nil, err
	}
	returned, err := encodeLineItems(s.Return.Items)
	if err != nil {
		return nil, err
	}
	m := &SaleModel{
		SaleNumber:     s.SaleNumber,
		Date:           s.Date,
		ClientID:       s.ClientID,
		SellerID:       s.SellerID,
		DeliveryManID:  s.DeliveryManID,
		Instant:        s.Instant,
		Items:          items,
		TotalAmount:    s.TotalAmount,
		DeliveryStatus: s.DeliveryStatus,
		ReturnItems:    returned,
		ReturnTotal:    s.Return.Total,
		ReturnGlobal:   s.ReturnGlobal,
		NetAmount:      s.NetAmount,
		PaymentMethod:  s.PaymentMethod,
		AmountPaid:     s.AmountPaid,
		InvoiceURL:     s.InvoiceURL,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m, nil
}

// encodeLineItems renders line items as the stored JSON document
func encodeLineItems(items []sales.LineItem) (string, error) {
	stored := make([]LineItemJSON, len(items))
	for i, it := range items {
		stored[i] = LineItemJSON{
			ProductID:       it.ProductID,
			SoldBy:          string(it.SoldBy),
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			UnitPrice:       it.UnitPrice,
			Total:           it.Total,
		}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeLineItems(raw string) ([]sales.LineItem, error) {
	var stored []LineItemJSON
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, err
		}
	}
	items := make([]sales.LineItem, len(stored))
	for i, it := range stored {
		items[i] = sales.LineItem{
			ProductID:       it.ProductID,
			SoldBy:          sales.SoldBy(it.SoldBy),
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			UnitPrice:       it.UnitPrice,
			Total:           it.Total,
		}
	}
	return items, nil
}

// SaleSequenceModel holds the last issued sale sequence value per UTC day
type SaleSequenceModel struct {
	Day   string `gorm:"type:varchar(8);primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleSequenceModel) TableName() string {
	return "sale_sequences"
}
