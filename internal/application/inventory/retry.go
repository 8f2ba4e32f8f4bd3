package inventory

import (
	"context"

	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is used when no attempt count is configured
const DefaultMaxAttempts = 3

// RetryOnStockRace runs fn again while it fails with a retryable stock
// race, up to attempts times. fn must be a whole transaction so a retry
// starts from committed state.
func RetryOnStockRace(ctx context.Context, attempts int, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil || !shared.IsRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if logger != nil {
			logger.Info("retrying after concurrent stock change",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}
	return err
}
