package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// WorkerConfig collects dependencies required to bootstrap the worker
type WorkerConfig struct {
	RedisOpt      asynq.RedisClientOpt
	Concurrency   int
	SweepInterval time.Duration
	Handlers      *Handlers
	Logger        *zap.Logger
}

// Worker wraps the asynq server and the retention scheduler
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

// NewWorker constructs a Worker
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("worker: handlers are required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	logger := cfg.Logger
	srv := asynq.NewServer(cfg.RedisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warn("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := NewServeMux(cfg.Handlers)

	var scheduler *asynq.Scheduler
	if cfg.SweepInterval > 0 {
		task, err := NewRetentionTask(time.Now().UTC())
		if err != nil {
			return nil, err
		}
		scheduler = asynq.NewScheduler(cfg.RedisOpt, &asynq.SchedulerOpts{Location: time.UTC, Logger: logger.Sugar()})
		spec := fmt.Sprintf("@every %s", cfg.SweepInterval)
		if _, err := scheduler.Register(spec, task, asynq.MaxRetry(1)); err != nil {
			return nil, fmt.Errorf("register retention sweep: %w", err)
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: logger}, nil
}

// NewServeMux routes every task type to its handler
func NewServeMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskClientOrder, h.HandleClientOrder)
	mux.HandleFunc(TaskInvoiceGenerate, h.HandleInvoice)
	mux.HandleFunc(TaskRetentionSweep, h.HandleRetention)
	return mux
}

// Run processes jobs until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start job server: %w", err)
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.server.Shutdown()
			return fmt.Errorf("start job scheduler: %w", err)
		}
	}
	w.logger.Info("job worker started")

	<-ctx.Done()
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	w.logger.Info("job worker stopped")
	return nil
}
