package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchRepository persists supply batches. The conditional methods apply
// a single atomic UPDATE guarded by the quantity predicate and report
// whether a row matched.
type BatchRepository interface {
	// FindByProduct returns all batches of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]SupplyBatch, error)

	// FindConsumable returns batches of a product with remaining stock
	FindConsumable(ctx context.Context, productID uuid.UUID) ([]SupplyBatch, error)

	// Create inserts a batch
	Create(ctx context.Context, batch *SupplyBatch) error

	// DecrementIfAvailable subtracts qty only when remaining_qty >= qty
	DecrementIfAvailable(ctx context.Context, batchID uuid.UUID, qty int64) (bool, error)

	// IncrementIfCapacity adds qty only when remaining_qty + qty <= quantity
	IncrementIfCapacity(ctx context.Context, batchID uuid.UUID, qty int64) (bool, error)

	// DeleteExhaustedBefore removes empty batches supplied before cutoff
	DeleteExhaustedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StockRepository maintains the aggregate stock columns on products
type StockRepository interface {
	// DecrementStock subtracts qty only when current_stock >= qty
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)

	// IncrementStock adds qty unconditionally
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int64) error

	// SetNextExpiry caches the soonest expiry of the product's non-empty batches
	SetNextExpiry(ctx context.Context, productID uuid.UUID, expiry *time.Time) error

	// CurrentStock reads the aggregate counter
	CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error)
}
