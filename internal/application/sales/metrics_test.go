package sales

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stockCall struct {
	productID uuid.UUID
	quantity  int64
	extra     int64
}

type recordingMetrics struct {
	mu          sync.Mutex
	sales       []decimal.Decimal
	consumed    []stockCall
	replenished []stockCall
	supplied    []stockCall
}

func (m *recordingMetrics) RecordSaleCreated(_ context.Context, _ bool, total decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, total)
}

func (m *recordingMetrics) RecordStockConsumed(_ context.Context, productID uuid.UUID, quantity, unbatched int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumed = append(m.consumed, stockCall{productID, quantity, unbatched})
}

func (m *recordingMetrics) RecordStockReplenished(_ context.Context, productID uuid.UUID, quantity, overflow int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replenished = append(m.replenished, stockCall{productID, quantity, overflow})
}

func (m *recordingMetrics) RecordStockSupplied(_ context.Context, productID uuid.UUID, quantity int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplied = append(m.supplied, stockCall{productID, quantity, 0})
}

func TestSaleBuilder_RecordsMetricsOncePerCommit(t *testing.T) {
	f := newSaleFixture()
	product := f.w.addProduct(10, nil, nil)
	batch := f.w.addBatch(product.ID, 5, saleClock.AddDate(0, 1, 0))
	f.w.failOnce[batch.ID] = true

	builder, _ := newTestBuilder(f.w)
	metrics := &recordingMetrics{}
	builder.SetBusinessMetrics(metrics)

	_, err := builder.Create(context.Background(), f.seller, CreateSaleRequest{
		ClientID: f.clientID,
		Items:    []SaleItemInput{{ProductID: product.ID, SoldBy: "unit", Quantity: 2}},
	})
	require.NoError(t, err)

	require.Len(t, metrics.sales, 1)
	assert.True(t, metrics.sales[0].Equal(decimal.NewFromInt(20)))
	assert.Equal(t, []stockCall{{product.ID, 2, 0}}, metrics.consumed)
}

func TestSaleBuilder_FailedSaleRecordsNothing(t *testing.T) {
	f := newSaleFixture()
	product := f.w.addProduct(10, nil, nil)
	f.w.addBatch(product.ID, 1, saleClock.AddDate(0, 1, 0))

	builder, _ := newTestBuilder(f.w)
	metrics := &recordingMetrics{}
	builder.SetBusinessMetrics(metrics)

	_, err := builder.Create(context.Background(), f.seller, CreateSaleRequest{
		ClientID: f.clientID,
		Items:    []SaleItemInput{{ProductID: product.ID, SoldBy: "unit", Quantity: 3}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Empty(t, metrics.sales)
	assert.Empty(t, metrics.consumed)
}

func TestSettlementProcessor_RecordsReturnedStock(t *testing.T) {
	s := sellFour(t)
	proc := NewSettlementProcessor(s.w.scope(), nil, 0, inventoryapp.DefaultMaxAttempts, zap.NewNop())
	metrics := &recordingMetrics{}
	proc.SetBusinessMetrics(metrics)

	_, err := proc.Update(context.Background(), s.seller, s.sale.ID, SettlementRequest{
		DeliveryStatus: ptr("delivered"),
		ReturnItems:    []ReturnItemInput{{ProductID: s.productID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, []stockCall{{s.productID, 3, 0}}, metrics.replenished)
	assert.Empty(t, metrics.consumed)
}
