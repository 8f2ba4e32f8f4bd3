package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/infrastructure/config"
)

var _ salesapp.TaskEnqueuer = (*Client)(nil)

// taskQueue is the part of asynq.Client used to submit tasks
type taskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client submits jobs to the queue
type Client struct {
	queue    taskQueue
	closer   func() error
	maxRetry int
}

// RedisOpt builds asynq connection options from the Redis configuration
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient constructs an asynq client
func NewClient(redisOpt asynq.RedisClientOpt, maxRetry int) *Client {
	client := asynq.NewClient(redisOpt)
	return &Client{queue: client, closer: client.Close, maxRetry: maxRetry}
}

// EnqueueClientOrder enqueues an order count bump for a client
func (c *Client) EnqueueClientOrder(ctx context.Context, clientID uuid.UUID) error {
	task, err := NewClientOrderTask(clientID)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// EnqueueInvoice enqueues invoice generation for a sale. A sale is only
// invoiced once while its task is retained.
func (c *Client) EnqueueInvoice(ctx context.Context, saleID uuid.UUID) error {
	task, err := NewInvoiceTask(saleID)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task,
		asynq.TaskID(TaskInvoiceGenerate+":"+saleID.String()),
		asynq.Retention(24*time.Hour),
	)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	opts = append(opts, asynq.Queue(QueueDefault), asynq.MaxRetry(c.maxRetry))
	if _, err := c.queue.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// Close releases client resources
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
