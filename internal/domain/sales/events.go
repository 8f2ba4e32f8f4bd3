package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated = "SaleCreated"
)

// SaleCreatedEvent is raised once a sale and its stock deductions are committed
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	ClientID    *uuid.UUID      `json:"client_id,omitempty"`
	SellerID    uuid.UUID       `json:"seller_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Instant     bool            `json:"instant"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		ClientID:        s.ClientID,
		SellerID:        s.SellerID,
		TotalAmount:     s.TotalAmount,
		Instant:         s.Instant,
	}
}
