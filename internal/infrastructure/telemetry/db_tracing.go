package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database span settings.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // keep query variables in db.statement
	SlowQueryThresh time.Duration
	DBSystem        string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// DBTracingPlugin adds otelgorm spans plus slow query and error marking.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a plugin for cfg
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs otelgorm and the timing callbacks on db. It does
// nothing when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("stockroute:timing_before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("stockroute:timing_before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("stockroute:timing_before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("stockroute:timing_before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("stockroute:timing_before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("stockroute:timing_before_raw", markQueryStart),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("stockroute:timing_after_create", p.afterQuery),
		cb.Query().After("gorm:query").Before("otel:after:query").Register("stockroute:timing_after_query", p.afterQuery),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("stockroute:timing_after_update", p.afterQuery),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("stockroute:timing_after_delete", p.afterQuery),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("stockroute:timing_after_row", p.afterQuery),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("stockroute:timing_after_raw", p.afterQuery),
	); err != nil {
		return err
	}

	p.logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

type queryStartKey struct{}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// afterQuery runs ahead of otelgorm's own after callback, while the
// statement span is still open.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
