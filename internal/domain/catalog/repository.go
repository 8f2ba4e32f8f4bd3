package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	shared.Pagination
}

// ProductRepository persists products. Save never writes the stock
// columns; those belong to the batch ledger.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs returns the products that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// List returns a page of products and the total match count
	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindBelowStock returns products whose current stock is below threshold
	FindBelowStock(ctx context.Context, threshold int64) ([]Product, error)

	// FindExpiringBefore returns products with a next expiry at or before cutoff
	// that still hold at least minQty units
	FindExpiringBefore(ctx context.Context, cutoff time.Time, minQty int64) ([]Product, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Update writes descriptive, price and discount fields
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	ExistsByNameKey(ctx context.Context, key string) (bool, error)
	Create(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
