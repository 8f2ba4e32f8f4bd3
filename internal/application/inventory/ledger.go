package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Ledger moves stock between supply batches and the product counter.
// It never opens a transaction itself: build it from the repositories of
// the caller's TransactionScope so every write joins that transaction.
// Movements lists what it did, for reporting after commit.
type Ledger struct {
	batches inventory.BatchRepository
	stock   inventory.StockRepository
	logger  *zap.Logger
	moves   []Movement
}

// NewLedger creates a ledger over the given repositories
func NewLedger(batches inventory.BatchRepository, stock inventory.StockRepository, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{batches: batches, stock: stock, logger: logger}
}

// LedgerFor builds a ledger bound to a transaction
func LedgerFor(repos TransactionalRepositories, logger *zap.Logger) *Ledger {
	return NewLedger(repos.BatchRepo(), repos.StockRepo(), logger)
}

// Consume takes quantity from the product's batches, soonest expiry first,
// then decrements the product counter by the same amount. Counter stock
// without a batch is sold only after the batches run out. Each write is
// a conditional update; a lost race surfaces as ConcurrentStockChangeError.
func (l *Ledger) Consume(ctx context.Context, productID uuid.UUID, quantity int64) (*inventory.ConsumptionPlan, error) {
	batches, err := l.batches.FindConsumable(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load batches of product %s: %w", productID, err)
	}
	current, err := l.stock.CurrentStock(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("read stock of product %s: %w", productID, err)
	}

	plan, err := inventory.PlanCounterConsumption(productID, quantity, batches, current)
	if err != nil {
		return nil, err
	}

	for _, take := range plan.Takes {
		ok, err := l.batches.DecrementIfAvailable(ctx, take.BatchID, take.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement batch %s: %w", take.BatchID, err)
		}
		if !ok {
			return nil, shared.NewConcurrentStockChangeError(productID, take.BatchID)
		}
	}

	ok, err := l.stock.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrement stock of product %s: %w", productID, err)
	}
	if !ok {
		return nil, shared.NewConcurrentStockChangeError(productID, uuid.Nil)
	}

	if err := l.refreshNextExpiry(ctx, productID); err != nil {
		return nil, err
	}

	l.logger.Debug("stock consumed",
		zap.String("product_id", productID.String()),
		zap.Int64("quantity", quantity),
		zap.Int("batches", len(plan.Takes)),
		zap.Int64("unbatched", plan.Unbatched),
	)
	l.moves = append(l.moves, Movement{
		Kind:      MovementConsumed,
		ProductID: productID,
		Quantity:  quantity,
		Unbatched: plan.Unbatched,
	})
	return plan, nil
}

// Replenish returns quantity to the product's batches, latest expiry
// first, up to each batch's original quantity. The product counter grows
// by the full quantity even when batch capacity falls short; the shortfall
// is reported as Overflow.
func (l *Ledger) Replenish(ctx context.Context, productID uuid.UUID, quantity int64) (*inventory.ReplenishmentPlan, error) {
	batches, err := l.batches.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load batches of product %s: %w", productID, err)
	}

	plan, err := inventory.PlanReplenishment(productID, quantity, batches)
	if err != nil {
		return nil, err
	}

	for _, ret := range plan.Returns {
		ok, err := l.batches.IncrementIfCapacity(ctx, ret.BatchID, ret.Quantity)
		if err != nil {
			return nil, fmt.Errorf("increment batch %s: %w", ret.BatchID, err)
		}
		if !ok {
			return nil, shared.NewConcurrentStockChangeError(productID, ret.BatchID)
		}
	}

	if err := l.stock.IncrementStock(ctx, productID, quantity); err != nil {
		return nil, fmt.Errorf("increment stock of product %s: %w", productID, err)
	}

	if err := l.refreshNextExpiry(ctx, productID); err != nil {
		return nil, err
	}

	if plan.Overflow > 0 {
		l.logger.Warn("replenished beyond batch capacity",
			zap.String("product_id", productID.String()),
			zap.Int64("quantity", quantity),
			zap.Int64("overflow", plan.Overflow),
		)
	}
	l.moves = append(l.moves, Movement{
		Kind:      MovementReplenished,
		ProductID: productID,
		Quantity:  quantity,
		Overflow:  plan.Overflow,
	})
	return plan, nil
}

// AddBatch records a new full batch and adds it to the product counter
func (l *Ledger) AddBatch(ctx context.Context, productID uuid.UUID, quantity int64, expiry, supplyDate time.Time) (*inventory.SupplyBatch, error) {
	batch, err := inventory.NewSupplyBatch(productID, quantity, expiry, supplyDate)
	if err != nil {
		return nil, err
	}
	if err := l.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	if err := l.stock.IncrementStock(ctx, productID, quantity); err != nil {
		return nil, fmt.Errorf("increment stock of product %s: %w", productID, err)
	}
	if err := l.refreshNextExpiry(ctx, productID); err != nil {
		return nil, err
	}
	l.moves = append(l.moves, Movement{Kind: MovementSupplied, ProductID: productID, Quantity: quantity})
	return batch, nil
}

// Movements returns the stock changes made so far, oldest first
func (l *Ledger) Movements() []Movement {
	return l.moves
}

// ReplenishCapacity is how much the product's batches can take back
func (l *Ledger) ReplenishCapacity(ctx context.Context, productID uuid.UUID) (int64, error) {
	batches, err := l.batches.FindByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("load batches of product %s: %w", productID, err)
	}
	var capacity int64
	for i := range batches {
		capacity += max(batches[i].Capacity(), 0)
	}
	return capacity, nil
}

func (l *Ledger) refreshNextExpiry(ctx context.Context, productID uuid.UUID) error {
	batches, err := l.batches.FindConsumable(ctx, productID)
	if err != nil {
		return fmt.Errorf("load batches of product %s: %w", productID, err)
	}
	var expiry *time.Time
	if next := inventory.NextExpiry(batches); next != nil {
		e := next.ExpiryDate
		expiry = &e
	}
	if err := l.stock.SetNextExpiry(ctx, productID, expiry); err != nil {
		return fmt.Errorf("set next expiry of product %s: %w", productID, err)
	}
	return nil
}
