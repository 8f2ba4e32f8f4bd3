package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockMetrics receives stock movements once their transaction commits.
type StockMetrics interface {
	RecordStockConsumed(ctx context.Context, productID uuid.UUID, quantity, unbatched int64)
	RecordStockReplenished(ctx context.Context, productID uuid.UUID, quantity, overflow int64)
	RecordStockSupplied(ctx context.Context, productID uuid.UUID, quantity int64)
}

// MovementKind tells how a ledger operation changed stock
type MovementKind int

const (
	MovementConsumed MovementKind = iota
	MovementReplenished
	MovementSupplied
)

// Movement is one stock change made through a Ledger
type Movement struct {
	Kind      MovementKind
	ProductID uuid.UUID
	Quantity  int64
	Unbatched int64 // consumed without a backing batch
	Overflow  int64 // replenished beyond batch capacity
}

// ReportMovements hands committed movements to m; a nil m drops them
func ReportMovements(ctx context.Context, m StockMetrics, moves []Movement) {
	if m == nil {
		return
	}
	for _, mv := range moves {
		switch mv.Kind {
		case MovementConsumed:
			m.RecordStockConsumed(ctx, mv.ProductID, mv.Quantity, mv.Unbatched)
		case MovementReplenished:
			m.RecordStockReplenished(ctx, mv.ProductID, mv.Quantity, mv.Overflow)
		case MovementSupplied:
			m.RecordStockSupplied(ctx, mv.ProductID, mv.Quantity)
		}
	}
}
