package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	appinv "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientOrderCounter bumps a client's order count
type ClientOrderCounter interface {
	IncrementOrders(ctx context.Context, id uuid.UUID, by int64) error
}

// InvoiceGenerator renders, uploads and links a sale invoice
type InvoiceGenerator interface {
	Generate(ctx context.Context, saleID uuid.UUID) (string, error)
}

// RetentionSweeper runs one retention pass
type RetentionSweeper interface {
	Sweep(ctx context.Context) (*appinv.SweepResult, error)
}

// Handlers holds the task handlers of the worker
type Handlers struct {
	clients   ClientOrderCounter
	invoices  InvoiceGenerator
	retention RetentionSweeper
	logger    *zap.Logger
}

// NewHandlers creates task handlers. invoices may be nil when object
// storage is disabled.
func NewHandlers(clients ClientOrderCounter, invoices InvoiceGenerator, retention RetentionSweeper, logger *zap.Logger) *Handlers {
	return &Handlers{
		clients:   clients,
		invoices:  invoices,
		retention: retention,
		logger:    logger,
	}
}

// HandleClientOrder processes TaskClientOrder tasks
func (h *Handlers) HandleClientOrder(ctx context.Context, t *asynq.Task) error {
	var payload ClientOrderPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	if err := h.clients.IncrementOrders(ctx, payload.ClientID, 1); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("client gone, order count dropped", zap.String("client_id", payload.ClientID.String()))
			return fmt.Errorf("client %s: %w", payload.ClientID, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// HandleInvoice processes TaskInvoiceGenerate tasks
func (h *Handlers) HandleInvoice(ctx context.Context, t *asynq.Task) error {
	if h.invoices == nil {
		return fmt.Errorf("invoice storage disabled: %w", asynq.SkipRetry)
	}
	var payload InvoicePayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	url, err := h.invoices.Generate(ctx, payload.SaleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("sale %s: %w", payload.SaleID, asynq.SkipRetry)
		}
		return err
	}
	h.logger.Info("invoice generated",
		zap.String("sale_id", payload.SaleID.String()),
		zap.String("url", url),
	)
	return nil
}

// HandleRetention processes TaskRetentionSweep tasks
func (h *Handlers) HandleRetention(ctx context.Context, t *asynq.Task) error {
	var payload RetentionPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	_, err := h.retention.Sweep(ctx)
	return err
}

func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}
