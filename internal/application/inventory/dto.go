package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/inventory"
)

// SupplyEntry is one line of a bulk supply intake
type SupplyEntry struct {
	ProductID  uuid.UUID `json:"product_id" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required,min=1"`
	ExpiringAt time.Time `json:"expiring_at" binding:"required"`
}

// BatchResponse is the API view of a supply batch
type BatchResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	SupplyDate   time.Time `json:"supply_date"`
	Quantity     int64     `json:"quantity"`
	RemainingQty int64     `json:"remaining_qty"`
	ExpiryDate   time.Time `json:"expiry_date"`
}

// ToBatchResponse converts a domain batch
func ToBatchResponse(b *inventory.SupplyBatch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		ProductID:    b.ProductID,
		SupplyDate:   b.SupplyDate,
		Quantity:     b.Quantity,
		RemainingQty: b.RemainingQty,
		ExpiryDate:   b.ExpiryDate,
	}
}

// AdjustInput is a manual stock correction. A negative Diff removes stock.
type AdjustInput struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	Diff      int64      `json:"diff"`
	Expiry    *time.Time `json:"expiry,omitempty"`
}

// AdjustResult reports the product's stock after an adjustment
type AdjustResult struct {
	ProductID uuid.UUID `json:"product_id"`
	NewStock  int64     `json:"new_stock"`
	Overflow  int64     `json:"overflow,omitempty"`
}

// StockAlert is a product flagged by an alert query
type StockAlert struct {
	ProductID      uuid.UUID  `json:"product_id"`
	Name           string     `json:"name"`
	CurrentStock   int64      `json:"current_stock"`
	NextExpiryDate *time.Time `json:"next_expiry_date,omitempty"`
}

func toStockAlerts(products []catalog.Product) []StockAlert {
	alerts := make([]StockAlert, len(products))
	for i, p := range products {
		alerts[i] = StockAlert{
			ProductID:      p.ID,
			Name:           p.Name,
			CurrentStock:   p.CurrentStock,
			NextExpiryDate: p.NextExpiryDate,
		}
	}
	return alerts
}

// SweepResult counts rows removed by the retention sweep
type SweepResult struct {
	Batches int64 `json:"batches"`
	Orders  int64 `json:"orders"`
}
