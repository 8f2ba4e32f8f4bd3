package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics counts sales and stock movements. Callers record only
// after the owning transaction commits, so retried attempts are not
// counted twice.
type BusinessMetrics struct {
	logger *zap.Logger

	salesCreated      *Counter
	salesAmount       *FloatCounter
	stockConsumed     *Counter
	stockReplenished  *Counter
	replenishOverflow *Counter
	stockSupplied     *Counter
}

// BusinessMetricsConfig holds the meter business metrics are created on.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates the business counters on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error
	if bm.salesCreated, err = NewCounter(cfg.Meter,
		"stockroute_sales_created_total", "Sales created", "{sales}"); err != nil {
		return nil, err
	}
	if bm.salesAmount, err = NewFloatCounter(cfg.Meter,
		"stockroute_sales_amount_total", "Total amount of created sales", "{currency}"); err != nil {
		return nil, err
	}
	if bm.stockConsumed, err = NewCounter(cfg.Meter,
		"stockroute_stock_consumed_total", "Units taken from stock", "{units}"); err != nil {
		return nil, err
	}
	if bm.stockReplenished, err = NewCounter(cfg.Meter,
		"stockroute_stock_replenished_total", "Units returned to stock", "{units}"); err != nil {
		return nil, err
	}
	if bm.replenishOverflow, err = NewCounter(cfg.Meter,
		"stockroute_stock_replenish_overflow_total", "Returned units beyond batch capacity", "{units}"); err != nil {
		return nil, err
	}
	if bm.stockSupplied, err = NewCounter(cfg.Meter,
		"stockroute_stock_supplied_total", "Units received in new batches", "{units}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordSaleCreated counts one committed sale and its total
func (bm *BusinessMetrics) RecordSaleCreated(ctx context.Context, instant bool, total decimal.Decimal) {
	kind := "client"
	if instant {
		kind = "instant"
	}
	bm.salesCreated.Inc(ctx, AttrSaleKind.String(kind))
	bm.salesAmount.Add(ctx, total.InexactFloat64(), AttrSaleKind.String(kind))
}

// RecordStockConsumed counts consumed units split by whether a batch
// backed them
func (bm *BusinessMetrics) RecordStockConsumed(ctx context.Context, productID uuid.UUID, quantity, unbatched int64) {
	product := AttrProductID.String(productID.String())
	if batched := quantity - unbatched; batched > 0 {
		bm.stockConsumed.Add(ctx, batched, product, AttrStockSource.String("batch"))
	}
	if unbatched > 0 {
		bm.stockConsumed.Add(ctx, unbatched, product, AttrStockSource.String("unbatched"))
	}
}

// RecordStockReplenished counts returned units and the part no batch
// could take back
func (bm *BusinessMetrics) RecordStockReplenished(ctx context.Context, productID uuid.UUID, quantity, overflow int64) {
	product := AttrProductID.String(productID.String())
	bm.stockReplenished.Add(ctx, quantity, product)
	if overflow > 0 {
		bm.replenishOverflow.Add(ctx, overflow, product)
		bm.logger.Debug("replenish overflow recorded",
			zap.String("product_id", productID.String()),
			zap.Int64("overflow", overflow),
		)
	}
}

// RecordStockSupplied counts units received as a new batch
func (bm *BusinessMetrics) RecordStockSupplied(ctx context.Context, productID uuid.UUID, quantity int64) {
	bm.stockSupplied.Add(ctx, quantity, AttrProductID.String(productID.String()))
}

// ErrMeterNil is returned when no meter is given.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failure to build metrics.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
