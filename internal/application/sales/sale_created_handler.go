package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TaskEnqueuer schedules follow-up work for a created sale on the job queue
type TaskEnqueuer interface {
	EnqueueClientOrder(ctx context.Context, clientID uuid.UUID) error
	EnqueueInvoice(ctx context.Context, saleID uuid.UUID) error
}

// ClientOrderCounter bumps a client's order count
type ClientOrderCounter interface {
	IncrementOrders(ctx context.Context, id uuid.UUID, by int64) error
}

// SaleCreatedHandler runs the side effects of a committed sale. With a
// queue the work is enqueued and retried by the worker; without one the
// order counter is bumped inline. Failures are logged and never undo the
// sale.
type SaleCreatedHandler struct {
	enqueuer TaskEnqueuer
	counter  ClientOrderCounter
	invoices bool
	logger   *zap.Logger
}

// NewSaleCreatedHandler creates a new handler for sale created events.
// enqueuer may be nil when the queue is disabled.
func NewSaleCreatedHandler(enqueuer TaskEnqueuer, counter ClientOrderCounter, invoices bool, logger *zap.Logger) *SaleCreatedHandler {
	return &SaleCreatedHandler{
		enqueuer: enqueuer,
		counter:  counter,
		invoices: invoices,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleCreatedHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCreated}
}

// Handle processes a SaleCreatedEvent
func (h *SaleCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*sales.SaleCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sales.EventTypeSaleCreated, event.EventType())
	}

	if created.ClientID != nil {
		h.countOrder(ctx, created)
	}
	if h.invoices && h.enqueuer != nil {
		if err := h.enqueuer.EnqueueInvoice(ctx, created.SaleID); err != nil {
			h.logger.Error("failed to enqueue invoice",
				zap.String("sale_id", created.SaleID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (h *SaleCreatedHandler) countOrder(ctx context.Context, created *sales.SaleCreatedEvent) {
	clientID := *created.ClientID
	if h.enqueuer != nil {
		err := h.enqueuer.EnqueueClientOrder(ctx, clientID)
		if err == nil {
			return
		}
		h.logger.Warn("failed to enqueue client order count, updating inline",
			zap.String("client_id", clientID.String()),
			zap.Error(err),
		)
	}
	if err := h.counter.IncrementOrders(ctx, clientID, 1); err != nil {
		h.logger.Error("failed to increment client orders",
			zap.String("client_id", clientID.String()),
			zap.String("sale_number", created.SaleNumber),
			zap.Error(err),
		)
	}
}
