package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplyService records incoming supplies and manual stock corrections.
// Every stock change goes through the Ledger.
type SupplyService struct {
	txScope     TransactionScope
	maxAttempts int
	metrics     StockMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewSupplyService creates a new SupplyService
func NewSupplyService(txScope TransactionScope, maxAttempts int, logger *zap.Logger) *SupplyService {
	return &SupplyService{
		txScope:     txScope,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// SetBusinessMetrics sets where committed stock movements are counted
func (s *SupplyService) SetBusinessMetrics(m StockMetrics) {
	s.metrics = m
}

// AddBulk creates one batch per entry in a single transaction. A missing
// product rejects the whole intake.
func (s *SupplyService) AddBulk(ctx context.Context, entries []SupplyEntry) ([]BatchResponse, error) {
	if len(entries) == 0 {
		return nil, shared.NewValidationError("supply must contain at least one entry")
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	var (
		out   []BatchResponse
		moves []Movement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		out = make([]BatchResponse, 0, len(entries))

		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		found := make(map[uuid.UUID]struct{}, len(products))
		for _, p := range products {
			found[p.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return shared.NewNotFoundError("product", id)
			}
		}

		ledger := LedgerFor(repos, s.logger)
		supplied := s.now()
		for _, e := range entries {
			batch, err := ledger.AddBatch(ctx, e.ProductID, e.Quantity, e.ExpiringAt, supplied)
			if err != nil {
				return err
			}
			out = append(out, ToBatchResponse(batch))
		}
		moves = ledger.Movements()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ReportMovements(ctx, s.metrics, moves)
	s.logger.Info("supply recorded", zap.Int("batches", len(out)))
	return out, nil
}

// ManualAdjust corrects a product's stock by diff. Negative diffs consume
// soonest-expiring stock; positive diffs refill batch capacity and put any
// remainder into a new batch when an expiry is given, or overflow otherwise.
func (s *SupplyService) ManualAdjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.Diff == 0 {
		return nil, shared.NewValidationError("adjustment must be non-zero")
	}

	var (
		result *AdjustResult
		moves  []Movement
	)
	err := RetryOnStockRace(ctx, s.maxAttempts, s.logger, func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if _, err := repos.ProductRepo().FindByID(ctx, input.ProductID); err != nil {
				return err
			}

			ledger := LedgerFor(repos, s.logger)
			res := &AdjustResult{ProductID: input.ProductID}

			if input.Diff < 0 {
				if _, err := ledger.Consume(ctx, input.ProductID, -input.Diff); err != nil {
					return err
				}
			} else if err := s.refill(ctx, ledger, input, res); err != nil {
				return err
			}

			stock, err := repos.StockRepo().CurrentStock(ctx, input.ProductID)
			if err != nil {
				return fmt.Errorf("read stock: %w", err)
			}
			res.NewStock = stock
			result = res
			moves = ledger.Movements()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	ReportMovements(ctx, s.metrics, moves)
	s.logger.Info("stock adjusted",
		zap.String("product_id", input.ProductID.String()),
		zap.Int64("diff", input.Diff),
		zap.Int64("new_stock", result.NewStock),
	)
	return result, nil
}

func (s *SupplyService) refill(ctx context.Context, ledger *Ledger, input AdjustInput, res *AdjustResult) error {
	if input.Expiry == nil {
		plan, err := ledger.Replenish(ctx, input.ProductID, input.Diff)
		if err != nil {
			return err
		}
		res.Overflow = plan.Overflow
		return nil
	}

	capacity, err := ledger.ReplenishCapacity(ctx, input.ProductID)
	if err != nil {
		return err
	}
	fill := min(capacity, input.Diff)
	if fill > 0 {
		if _, err := ledger.Replenish(ctx, input.ProductID, fill); err != nil {
			return err
		}
	}
	if rest := input.Diff - fill; rest > 0 {
		if _, err := ledger.AddBatch(ctx, input.ProductID, rest, *input.Expiry, s.now()); err != nil {
			return err
		}
	}
	return nil
}
