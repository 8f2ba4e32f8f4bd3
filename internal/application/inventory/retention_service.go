package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/partner"
	"go.uber.org/zap"
)

// RetentionService deletes records past their retention period. Batches
// are only removed once empty so the stock invariant is unaffected.
type RetentionService struct {
	batchRepo      inventory.BatchRepository
	orderRepo      partner.OrderRepository
	batchRetention time.Duration
	orderRetention time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(
	batchRepo inventory.BatchRepository,
	orderRepo partner.OrderRepository,
	batchRetention, orderRetention time.Duration,
	logger *zap.Logger,
) *RetentionService {
	return &RetentionService{
		batchRepo:      batchRepo,
		orderRepo:      orderRepo,
		batchRetention: batchRetention,
		orderRetention: orderRetention,
		logger:         logger,
		now:            time.Now,
	}
}

// Sweep runs one retention pass
func (s *RetentionService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	res := &SweepResult{}

	if s.batchRetention > 0 {
		n, err := s.batchRepo.DeleteExhaustedBefore(ctx, now.Add(-s.batchRetention))
		if err != nil {
			return nil, fmt.Errorf("sweep batches: %w", err)
		}
		res.Batches = n
	}
	if s.orderRetention > 0 {
		n, err := s.orderRepo.DeleteCreatedBefore(ctx, now.Add(-s.orderRetention))
		if err != nil {
			return nil, fmt.Errorf("sweep orders: %w", err)
		}
		res.Orders = n
	}

	s.logger.Info("retention sweep finished",
		zap.Int64("batches", res.Batches),
		zap.Int64("orders", res.Orders),
	)
	return res, nil
}
