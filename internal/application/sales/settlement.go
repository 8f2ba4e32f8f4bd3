package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Locker serialises work on a key across processes. Lock returns
// ErrConcurrencyConflict when the key is already held.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// DefaultLockTTL bounds how long a settlement may hold its sale lock
const DefaultLockTTL = 10 * time.Second

// SettlementProcessor applies delivery status, return and payment updates
// to existing sales. Returned goods flow back into the batch ledger in
// the same transaction as the sale write.
type SettlementProcessor struct {
	txScope     inventoryapp.TransactionScope
	locker      Locker
	lockTTL     time.Duration
	maxAttempts int
	metrics     inventoryapp.StockMetrics
	logger      *zap.Logger
}

// NewSettlementProcessor creates a new SettlementProcessor. locker may be
// nil, in which case only the optimistic version check guards the sale.
func NewSettlementProcessor(txScope inventoryapp.TransactionScope, locker Locker, lockTTL time.Duration, maxAttempts int, logger *zap.Logger) *SettlementProcessor {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &SettlementProcessor{
		txScope:     txScope,
		locker:      locker,
		lockTTL:     lockTTL,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// SetBusinessMetrics sets where returned stock is counted
func (p *SettlementProcessor) SetBusinessMetrics(m inventoryapp.StockMetrics) {
	p.metrics = m
}

// Update applies a settlement to a sale visible to actor
func (p *SettlementProcessor) Update(ctx context.Context, actor identity.Actor, saleID uuid.UUID, req SettlementRequest) (*SaleResponse, error) {
	settlement := req.toDomain()
	if settlement.IsEmpty() {
		return nil, shared.NewValidationError("settlement changes nothing")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "settle")
	defer span.End()

	if p.locker != nil {
		release, err := p.locker.Lock(ctx, saleLockKey(saleID), p.lockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				p.logger.Warn("failed to release sale lock",
					zap.String("sale_id", saleID.String()),
					zap.Error(err),
				)
			}
		}()
	}

	var (
		updated *sales.Sale
		moves   []inventoryapp.Movement
	)
	err := inventoryapp.RetryOnStockRace(ctx, p.maxAttempts, p.logger, func(ctx context.Context) error {
		return p.txScope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
			sale, m, err := p.applyInTx(ctx, repos, actor, saleID, settlement)
			if err != nil {
				return err
			}
			updated, moves = sale, m
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inventoryapp.ReportMovements(ctx, p.metrics, moves)

	resp := ToSaleResponse(updated)
	return &resp, nil
}

func (p *SettlementProcessor) applyInTx(ctx context.Context, repos inventoryapp.TransactionalRepositories, actor identity.Actor, saleID uuid.UUID, settlement sales.Settlement) (*sales.Sale, []inventoryapp.Movement, error) {
	sale, err := repos.SaleRepo().FindScoped(ctx, saleID, actor.SaleScope())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewNotFoundError("sale", saleID)
		}
		return nil, nil, err
	}
	expectedVersion := sale.Version

	outcome, err := sale.ApplySettlement(settlement)
	if err != nil {
		return nil, nil, err
	}
	if !outcome.TransitionModelled {
		p.logger.Warn("unmodelled delivery status transition",
			zap.String("sale_id", sale.ID.String()),
			zap.String("from", outcome.PreviousStatus.String()),
			zap.String("to", sale.DeliveryStatus.String()),
		)
	}

	ledger := inventoryapp.LedgerFor(repos, p.logger)
	for _, line := range outcome.Returned {
		if _, err := ledger.Replenish(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, nil, err
		}
	}

	if err := repos.SaleRepo().UpdateSettlement(ctx, sale, expectedVersion); err != nil {
		return nil, nil, err
	}

	p.logger.Info("sale settled",
		zap.String("sale_id", sale.ID.String()),
		zap.String("status", sale.DeliveryStatus.String()),
		zap.Int("returned_lines", len(outcome.Returned)),
		zap.String("net", sale.NetAmount.String()),
		zap.String("paid", sale.AmountPaid.String()),
	)
	return sale, ledger.Movements(), nil
}

func saleLockKey(id uuid.UUID) string {
	return "sale:" + id.String()
}
