package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newRecordingMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: provider.Meter("test"), Logger: zap.NewNop()})
	require.NoError(t, err)
	return bm, reader
}

// intSum adds up the data points of a counter whose attributes include want
func intSum(t *testing.T, reader *sdkmetric.ManualReader, name string, want ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if hasAttributes(dp.Attributes, want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAttributes(set attribute.Set, want []attribute.KeyValue) bool {
	for _, kv := range want {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}

func TestNewBusinessMetrics(t *testing.T) {
	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)
	require.NotNil(t, bm)

	// noop meter must accept every record call
	ctx := context.Background()
	bm.RecordSaleCreated(ctx, true, decimal.NewFromInt(10))
	bm.RecordStockConsumed(ctx, uuid.New(), 3, 1)
	bm.RecordStockReplenished(ctx, uuid.New(), 3, 1)
	bm.RecordStockSupplied(ctx, uuid.New(), 3)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(BusinessMetricsConfig{})
	require.ErrorIs(t, err, ErrMeterNil)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordSaleCreated(t *testing.T) {
	bm, reader := newRecordingMetrics(t)
	ctx := context.Background()

	bm.RecordSaleCreated(ctx, false, decimal.RequireFromString("12.5"))
	bm.RecordSaleCreated(ctx, false, decimal.RequireFromString("7.5"))
	bm.RecordSaleCreated(ctx, true, decimal.NewFromInt(3))

	assert.Equal(t, int64(2), intSum(t, reader, "stockroute_sales_created_total", AttrSaleKind.String("client")))
	assert.Equal(t, int64(1), intSum(t, reader, "stockroute_sales_created_total", AttrSaleKind.String("instant")))
}

func TestBusinessMetrics_RecordStockConsumed(t *testing.T) {
	bm, reader := newRecordingMetrics(t)
	productID := uuid.New()
	product := AttrProductID.String(productID.String())

	bm.RecordStockConsumed(context.Background(), productID, 6, 4)

	assert.Equal(t, int64(6), intSum(t, reader, "stockroute_stock_consumed_total", product))
	assert.Equal(t, int64(2), intSum(t, reader, "stockroute_stock_consumed_total", product, AttrStockSource.String("batch")))
	assert.Equal(t, int64(4), intSum(t, reader, "stockroute_stock_consumed_total", product, AttrStockSource.String("unbatched")))
}

func TestBusinessMetrics_RecordStockReplenished(t *testing.T) {
	bm, reader := newRecordingMetrics(t)
	productID := uuid.New()
	product := AttrProductID.String(productID.String())
	ctx := context.Background()

	bm.RecordStockReplenished(ctx, productID, 5, 0)
	bm.RecordStockReplenished(ctx, productID, 4, 3)

	assert.Equal(t, int64(9), intSum(t, reader, "stockroute_stock_replenished_total", product))
	assert.Equal(t, int64(3), intSum(t, reader, "stockroute_stock_replenish_overflow_total", product))
}

func TestBusinessMetrics_RecordStockSupplied(t *testing.T) {
	bm, reader := newRecordingMetrics(t)
	productID := uuid.New()

	bm.RecordStockSupplied(context.Background(), productID, 12)

	assert.Equal(t, int64(12), intSum(t, reader, "stockroute_stock_supplied_total", AttrProductID.String(productID.String())))
}
