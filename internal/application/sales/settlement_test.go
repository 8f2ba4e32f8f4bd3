package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memLocker is a single-process Locker
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	keys []string
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) Lock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, shared.ErrConcurrencyConflict
	}
	l.held[key] = true
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

func ptr[T any](v T) *T { return &v }

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

type settledSale struct {
	saleFixture
	productID uuid.UUID
	batchID   uuid.UUID
	sale      *SaleResponse
}

// sellFour sells 4 units at 10 out of a single batch of 10
func sellFour(t *testing.T) settledSale {
	t.Helper()
	f := newSaleFixture()
	product := f.w.addProduct(10, nil, nil)
	batch := f.w.addBatch(product.ID, 10, saleClock.AddDate(0, 2, 0))
	builder, _ := newTestBuilder(f.w)
	resp, err := builder.Create(context.Background(), f.seller, CreateSaleRequest{
		ClientID: f.clientID,
		Items:    []SaleItemInput{{ProductID: product.ID, SoldBy: "unit", Quantity: 4}},
	})
	require.NoError(t, err)
	return settledSale{saleFixture: f, productID: product.ID, batchID: batch.ID, sale: resp}
}

func TestSettlementProcessor_DeliverAndReturn(t *testing.T) {
	ctx := context.Background()
	s := sellFour(t)
	locker := newMemLocker()
	proc := NewSettlementProcessor(s.w.scope(), locker, 0, inventoryapp.DefaultMaxAttempts, zap.NewNop())

	assert.Equal(t, int64(6), s.w.stockOf(s.productID))

	resp, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{
		DeliveryStatus: ptr("delivered"),
		ReturnItems:    []ReturnItemInput{{ProductID: s.productID, SoldBy: "unit", Quantity: 4}},
	})
	require.NoError(t, err)

	assert.Equal(t, "delivered", resp.DeliveryStatus)
	assert.True(t, resp.Return.ReturnTotal.Equal(decimal.NewFromInt(40)))
	assert.True(t, resp.NetAmount.IsZero())
	assert.Equal(t, s.sale.Version+1, resp.Version)
	assert.Equal(t, int64(10), s.w.stockOf(s.productID))
	assert.Equal(t, int64(10), s.w.remaining(s.batchID))
	assert.Equal(t, []string{"sale:" + s.sale.ID.String()}, locker.keys)
	assert.Empty(t, locker.held)
}

func TestSettlementProcessor_ReturnsAreCumulative(t *testing.T) {
	ctx := context.Background()
	s := sellFour(t)
	proc := NewSettlementProcessor(s.w.scope(), nil, 0, inventoryapp.DefaultMaxAttempts, zap.NewNop())

	_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{
		DeliveryStatus: ptr("delivered"),
		ReturnItems:    []ReturnItemInput{{ProductID: s.productID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{
		ReturnItems: []ReturnItemInput{{ProductID: s.productID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, int64(9), s.w.stockOf(s.productID))

	resp, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{
		ReturnItems: []ReturnItemInput{{ProductID: s.productID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Return.ReturnItems, 2)
	assert.Equal(t, int64(10), s.w.stockOf(s.productID))
}

func TestSettlementProcessor_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("return on ordered sale", func(t *testing.T) {
		s := sellFour(t)
		proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
		_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{
			ReturnItems: []ReturnItemInput{{ProductID: s.productID, Quantity: 1}},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, int64(6), s.w.stockOf(s.productID))
	})

	t.Run("empty request", func(t *testing.T) {
		s := sellFour(t)
		proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
		_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("payment above net", func(t *testing.T) {
		s := sellFour(t)
		proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
		_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{AmountPaid: dec(41)})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("sale of another seller", func(t *testing.T) {
		s := sellFour(t)
		proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
		other := identity.NewActor(uuid.New(), identity.RoleSeller)
		_, err := proc.Update(ctx, other, s.sale.ID, SettlementRequest{AmountPaid: dec(1)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sale is locked", func(t *testing.T) {
		s := sellFour(t)
		locker := newMemLocker()
		locker.held[saleLockKey(s.sale.ID)] = true
		proc := NewSettlementProcessor(s.w.scope(), locker, 0, 0, zap.NewNop())
		_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{AmountPaid: dec(1)})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("stale version", func(t *testing.T) {
		s := sellFour(t)
		proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
		scope := inventoryapp.NewNoOpTransactionScope(inventoryapp.Repositories{
			Products: fakeProducts{s.w},
			Batches:  fakeStock{s.w},
			Stock:    fakeStock{s.w},
			Sales:    staleSales{fakeSales{s.w}},
		})
		proc.txScope = scope
		_, err := proc.Update(ctx, s.seller, s.sale.ID, SettlementRequest{AmountPaid: dec(1)})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestSettlementProcessor_DeliveryPaysInstalments(t *testing.T) {
	ctx := context.Background()
	s := sellFour(t)
	proc := NewSettlementProcessor(s.w.scope(), nil, 0, 0, zap.NewNop())
	courier := identity.NewActor(s.delivery, identity.RoleDelivery)

	_, err := proc.Update(ctx, courier, s.sale.ID, SettlementRequest{
		DeliveryStatus: ptr("delivered"),
		PaymentMethod:  ptr("card"),
		AmountPaid:     dec(15),
	})
	require.NoError(t, err)

	resp, err := proc.Update(ctx, courier, s.sale.ID, SettlementRequest{
		ReturnGlobal: dec(5),
		AmountPaid:   dec(20),
	})
	require.NoError(t, err)
	assert.True(t, resp.NetAmount.Equal(decimal.NewFromInt(35)))
	assert.True(t, resp.AmountPaid.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, "card", resp.PaymentMethod)
}

// staleSales simulates a concurrent writer that bumped the version
type staleSales struct {
	fakeSales
}

func (s staleSales) UpdateSettlement(ctx context.Context, sale *sales.Sale, expectedVersion int) error {
	return s.fakeSales.UpdateSettlement(ctx, sale, expectedVersion-1)
}
