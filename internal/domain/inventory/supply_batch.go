package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// SupplyBatch is one expiry-dated delivery of a product.
// 0 <= RemainingQty <= Quantity always holds.
type SupplyBatch struct {
	shared.BaseEntity
	ProductID    uuid.UUID
	SupplyDate   time.Time
	Quantity     int64
	RemainingQty int64
	ExpiryDate   time.Time
}

// NewSupplyBatch creates a full batch
func NewSupplyBatch(productID uuid.UUID, quantity int64, expiry, supplyDate time.Time) (*SupplyBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("supply batch requires a product")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("supply quantity must be positive, got %d", quantity)
	}
	if expiry.IsZero() {
		return nil, shared.NewValidationError("supply batch requires an expiry date")
	}
	if supplyDate.IsZero() {
		supplyDate = time.Now()
	}
	return &SupplyBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		SupplyDate:   supplyDate,
		Quantity:     quantity,
		RemainingQty: quantity,
		ExpiryDate:   expiry,
	}, nil
}

// Capacity is how many units can be returned into this batch
func (b *SupplyBatch) Capacity() int64 {
	return b.Quantity - b.RemainingQty
}

// IsExhausted reports whether nothing is left to consume
func (b *SupplyBatch) IsExhausted() bool {
	return b.RemainingQty <= 0
}

// IsExpired reports whether the batch expired before now
func (b *SupplyBatch) IsExpired(now time.Time) bool {
	return b.ExpiryDate.Before(now)
}
