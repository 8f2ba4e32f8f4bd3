// Package jobs runs sale side effects and maintenance on an asynq queue.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every task is enqueued on
	QueueDefault = "default"
	// TaskClientOrder bumps a client's order count
	TaskClientOrder = "client:order"
	// TaskInvoiceGenerate renders and uploads a sale invoice
	TaskInvoiceGenerate = "invoice:generate"
	// TaskRetentionSweep deletes expired batches and orders
	TaskRetentionSweep = "retention:sweep"
)

// ClientOrderPayload identifies the client whose count is bumped
type ClientOrderPayload struct {
	ClientID uuid.UUID `json:"client_id"`
}

// InvoicePayload identifies the sale to invoice
type InvoicePayload struct {
	SaleID uuid.UUID `json:"sale_id"`
}

// RetentionPayload carries scheduling metadata
type RetentionPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewClientOrderTask constructs a client order task
func NewClientOrderTask(clientID uuid.UUID) (*asynq.Task, error) {
	return newTask(TaskClientOrder, ClientOrderPayload{ClientID: clientID})
}

// NewInvoiceTask constructs an invoice generation task
func NewInvoiceTask(saleID uuid.UUID) (*asynq.Task, error) {
	return newTask(TaskInvoiceGenerate, InvoicePayload{SaleID: saleID})
}

// NewRetentionTask constructs a retention sweep task
func NewRetentionTask(at time.Time) (*asynq.Task, error) {
	return newTask(TaskRetentionSweep, RetentionPayload{ScheduledFor: at})
}

func newTask(typename string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body, asynq.Queue(QueueDefault)), nil
}
