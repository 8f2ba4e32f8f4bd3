// Package scheduler runs periodic maintenance in-process when no job queue
// is configured.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appinv "github.com/stockroute/backend/internal/application/inventory"
	"go.uber.org/zap"
)

var (
	ErrSchedulerNotRunning = errors.New("retention scheduler is not running")
	ErrInvalidConfig       = errors.New("invalid retention scheduler configuration")
)

// Sweeper runs one retention pass
type Sweeper interface {
	Sweep(ctx context.Context) (*appinv.SweepResult, error)
}

// RetentionSchedulerConfig holds configuration for the retention scheduler
type RetentionSchedulerConfig struct {
	// Interval between two sweeps
	Interval time.Duration

	// Timeout bounds a single sweep
	Timeout time.Duration
}

// DefaultRetentionSchedulerConfig returns default configuration
func DefaultRetentionSchedulerConfig() RetentionSchedulerConfig {
	return RetentionSchedulerConfig{
		Interval: 24 * time.Hour,
		Timeout:  15 * time.Minute,
	}
}

// RetentionScheduler sweeps expired batches and orders on a fixed interval
type RetentionScheduler struct {
	sweeper   Sweeper
	logger    *zap.Logger
	config    RetentionSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRetentionScheduler creates a new retention scheduler
func NewRetentionScheduler(sweeper Sweeper, logger *zap.Logger, config RetentionSchedulerConfig) (*RetentionScheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRetentionSchedulerConfig().Timeout
	}
	return &RetentionScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}, nil
}

// Start starts the sweep loop. The first sweep runs after one interval.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Retention scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop gracefully stops the scheduler
func (s *RetentionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Retention scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Retention scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a sweep immediately in the background
func (s *RetentionScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

func (s *RetentionScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Retention loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *RetentionScheduler) execute(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.sweeper.Sweep(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Retention sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("Retention sweep completed",
		zap.Duration("duration", duration),
		zap.Int64("batches", result.Batches),
		zap.Int64("orders", result.Orders),
	)
}
