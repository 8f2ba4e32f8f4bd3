package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStock is an in-memory batch and stock store with the same
// conditional-update semantics as the SQL repositories
type memStock struct {
	mu         sync.Mutex
	batches    map[uuid.UUID]*inventory.SupplyBatch
	stock      map[uuid.UUID]int64
	nextExpiry map[uuid.UUID]*time.Time
	failBatch  uuid.UUID
}

func newMemStock() *memStock {
	return &memStock{
		batches:    make(map[uuid.UUID]*inventory.SupplyBatch),
		stock:      make(map[uuid.UUID]int64),
		nextExpiry: make(map[uuid.UUID]*time.Time),
	}
}

func (m *memStock) seed(productID uuid.UUID, qty, remaining int64, expiry time.Time) *inventory.SupplyBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &inventory.SupplyBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		SupplyDate:   time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		Quantity:     qty,
		RemainingQty: remaining,
		ExpiryDate:   expiry,
	}
	m.batches[b.ID] = b
	m.stock[productID] += remaining
	return b
}

func (m *memStock) remaining(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[id].RemainingQty
}

func (m *memStock) FindByProduct(_ context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []inventory.SupplyBatch
	for _, b := range m.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStock) FindConsumable(ctx context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	all, _ := m.FindByProduct(ctx, productID)
	var out []inventory.SupplyBatch
	for _, b := range all {
		if b.RemainingQty > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStock) Create(_ context.Context, batch *inventory.SupplyBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *memStock) DecrementIfAvailable(_ context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.batches[batchID]
	if b == nil || batchID == m.failBatch || b.RemainingQty < qty {
		return false, nil
	}
	b.RemainingQty -= qty
	return true, nil
}

func (m *memStock) IncrementIfCapacity(_ context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.batches[batchID]
	if b == nil || b.RemainingQty+qty > b.Quantity {
		return false, nil
	}
	b.RemainingQty += qty
	return true, nil
}

func (m *memStock) DeleteExhaustedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, b := range m.batches {
		if b.RemainingQty == 0 && b.SupplyDate.Before(cutoff) {
			delete(m.batches, id)
			n++
		}
	}
	return n, nil
}

func (m *memStock) DecrementStock(_ context.Context, productID uuid.UUID, qty int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stock[productID] < qty {
		return false, nil
	}
	m.stock[productID] -= qty
	return true, nil
}

func (m *memStock) IncrementStock(_ context.Context, productID uuid.UUID, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] += qty
	return nil
}

func (m *memStock) SetNextExpiry(_ context.Context, productID uuid.UUID, expiry *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextExpiry[productID] = expiry
	return nil
}

func (m *memStock) CurrentStock(_ context.Context, productID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID], nil
}

func (m *memStock) sumRemaining(productID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.batches {
		if b.ProductID == productID {
			n += b.RemainingQty
		}
	}
	return n
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindBelowStock(ctx context.Context, threshold int64) ([]catalog.Product, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindExpiringBefore(ctx context.Context, cutoff time.Time, minQty int64) ([]catalog.Product, error) {
	args := m.Called(ctx, cutoff, minQty)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLedger_ConsumeOrdering(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	first := store.seed(productID, 5, 5, day(2025, 1, 10))
	second := store.seed(productID, 10, 10, day(2025, 2, 1))

	ledger := NewLedger(store, store, zap.NewNop())
	plan, err := ledger.Consume(ctx, productID, 8)
	require.NoError(t, err)
	require.Len(t, plan.Takes, 2)

	assert.Equal(t, int64(0), store.remaining(first.ID))
	assert.Equal(t, int64(7), store.remaining(second.ID))
	assert.Equal(t, int64(7), store.stock[productID])
	require.NotNil(t, store.nextExpiry[productID])
	assert.Equal(t, day(2025, 2, 1), *store.nextExpiry[productID])
}

func TestLedger_ConsumeInsufficientLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	b := store.seed(productID, 5, 5, day(2025, 1, 10))

	_, err := NewLedger(store, store, nil).Consume(ctx, productID, 6)

	var stockErr *shared.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(5), stockErr.Available)
	assert.Equal(t, int64(5), store.remaining(b.ID))
	assert.Equal(t, int64(5), store.stock[productID])
}

func TestLedger_ConsumeLostRace(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	b := store.seed(productID, 5, 5, day(2025, 1, 10))
	store.failBatch = b.ID

	_, err := NewLedger(store, store, nil).Consume(ctx, productID, 2)
	assert.ErrorIs(t, err, shared.ErrConcurrentStock)
	assert.True(t, shared.IsRetryable(err))
}

func TestLedger_RoundTripRestoresStock(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	store.seed(productID, 5, 5, day(2025, 1, 10))
	store.seed(productID, 10, 10, day(2025, 2, 1))
	ledger := NewLedger(store, store, nil)

	_, err := ledger.Consume(ctx, productID, 4)
	require.NoError(t, err)
	plan, err := ledger.Replenish(ctx, productID, 4)
	require.NoError(t, err)

	assert.Zero(t, plan.Overflow)
	assert.Equal(t, int64(15), store.stock[productID])
	assert.Equal(t, store.sumRemaining(productID), store.stock[productID])
}

func TestLedger_ReplenishOverflowStillCounts(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	b := store.seed(productID, 5, 4, day(2025, 1, 10))

	plan, err := NewLedger(store, store, nil).Replenish(ctx, productID, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(2), plan.Overflow)
	assert.Equal(t, int64(5), store.remaining(b.ID))
	assert.Equal(t, int64(7), store.stock[productID])
}

func TestLedger_OverflowStockIsSellable(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	b := store.seed(productID, 2, 2, day(2025, 1, 10))
	ledger := NewLedger(store, store, nil)

	rep, err := ledger.Replenish(ctx, productID, 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), rep.Overflow)
	require.Equal(t, int64(7), store.stock[productID])

	plan, err := ledger.Consume(ctx, productID, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(4), plan.Unbatched)
	assert.Zero(t, store.remaining(b.ID))
	assert.Equal(t, int64(1), store.stock[productID])
	assert.Nil(t, store.nextExpiry[productID])

	_, err = ledger.Consume(ctx, productID, 2)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, int64(1), store.stock[productID])
}

func TestLedger_AddBatch(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	productID := uuid.New()
	store.seed(productID, 5, 5, day(2025, 3, 1))

	batch, err := NewLedger(store, store, nil).AddBatch(ctx, productID, 7, day(2025, 2, 1), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, int64(7), batch.RemainingQty)
	assert.Equal(t, int64(12), store.stock[productID])
	assert.Equal(t, day(2025, 2, 1), *store.nextExpiry[productID])
}

func TestSupplyService_AddBulkRejectsMissingProduct(t *testing.T) {
	ctx := context.Background()
	store := newMemStock()
	products := new(MockProductRepository)
	known := uuid.New()
	missing := uuid.New()
	products.On("FindByIDs", ctx, []uuid.UUID{known, missing}).
		Return([]catalog.Product{{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: known}}}}, nil)

	scope := NewNoOpTransactionScope(Repositories{Products: products, Batches: store, Stock: store})
	svc := NewSupplyService(scope, 3, zap.NewNop())

	_, err := svc.AddBulk(ctx, []SupplyEntry{
		{ProductID: known, Quantity: 5, ExpiringAt: day(2025, 5, 1)},
		{ProductID: missing, Quantity: 5, ExpiringAt: day(2025, 5, 1)},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Zero(t, store.stock[known])
	products.AssertExpectations(t)
}

func TestSupplyService_ManualAdjust(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	product := &catalog.Product{CurrentStock: 0}
	product.ID = productID

	setup := func() (*memStock, *SupplyService) {
		store := newMemStock()
		store.seed(productID, 10, 6, day(2025, 3, 1))
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, productID).Return(product, nil)
		scope := NewNoOpTransactionScope(Repositories{Products: products, Batches: store, Stock: store})
		return store, NewSupplyService(scope, 3, zap.NewNop())
	}

	t.Run("negative diff consumes", func(t *testing.T) {
		store, svc := setup()
		res, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: -4})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.NewStock)
		assert.Equal(t, store.sumRemaining(productID), res.NewStock)
	})

	t.Run("positive diff with expiry creates batch for remainder", func(t *testing.T) {
		store, svc := setup()
		expiry := day(2025, 9, 1)
		res, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: 7, Expiry: &expiry})
		require.NoError(t, err)
		assert.Equal(t, int64(13), res.NewStock)
		assert.Zero(t, res.Overflow)
		assert.Equal(t, store.sumRemaining(productID), res.NewStock)
		assert.Len(t, store.batches, 2)
	})

	t.Run("positive diff without expiry overflows", func(t *testing.T) {
		_, svc := setup()
		res, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: 7})
		require.NoError(t, err)
		assert.Equal(t, int64(13), res.NewStock)
		assert.Equal(t, int64(3), res.Overflow)
	})

	t.Run("zero diff rejected", func(t *testing.T) {
		_, svc := setup()
		_, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

type MockStockMetrics struct {
	mock.Mock
}

func (m *MockStockMetrics) RecordStockConsumed(ctx context.Context, productID uuid.UUID, quantity, unbatched int64) {
	m.Called(ctx, productID, quantity, unbatched)
}

func (m *MockStockMetrics) RecordStockReplenished(ctx context.Context, productID uuid.UUID, quantity, overflow int64) {
	m.Called(ctx, productID, quantity, overflow)
}

func (m *MockStockMetrics) RecordStockSupplied(ctx context.Context, productID uuid.UUID, quantity int64) {
	m.Called(ctx, productID, quantity)
}

func TestSupplyService_ReportsCommittedMovements(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	product := &catalog.Product{}
	product.ID = productID

	setup := func() (*SupplyService, *MockStockMetrics) {
		store := newMemStock()
		store.seed(productID, 10, 6, day(2025, 3, 1))
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, productID).Return(product, nil)
		products.On("FindByIDs", mock.Anything, []uuid.UUID{productID}).Return([]catalog.Product{*product}, nil)
		svc := NewSupplyService(NewNoOpTransactionScope(Repositories{Products: products, Batches: store, Stock: store}), 3, zap.NewNop())
		metrics := new(MockStockMetrics)
		svc.SetBusinessMetrics(metrics)
		return svc, metrics
	}

	t.Run("replenish overflow", func(t *testing.T) {
		svc, metrics := setup()
		metrics.On("RecordStockReplenished", mock.Anything, productID, int64(7), int64(3)).Once()

		_, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: 7})
		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("consume", func(t *testing.T) {
		svc, metrics := setup()
		metrics.On("RecordStockConsumed", mock.Anything, productID, int64(4), int64(0)).Once()

		_, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: -4})
		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("supply", func(t *testing.T) {
		svc, metrics := setup()
		metrics.On("RecordStockSupplied", mock.Anything, productID, int64(12)).Once()

		_, err := svc.AddBulk(ctx, []SupplyEntry{{ProductID: productID, Quantity: 12, ExpiringAt: day(2025, 6, 1)}})
		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})

	t.Run("failed adjustment reports nothing", func(t *testing.T) {
		svc, metrics := setup()

		_, err := svc.ManualAdjust(ctx, AdjustInput{ProductID: productID, Diff: -50})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		metrics.AssertNotCalled(t, "RecordStockConsumed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAlertService_Defaults(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	low := catalog.Product{Name: "Milk", CurrentStock: 3, UnitPrice: decimal.NewFromInt(5)}
	products.On("FindBelowStock", ctx, int64(10)).Return([]catalog.Product{low}, nil)
	products.On("FindExpiringBefore", ctx, mock.AnythingOfType("time.Time"), int64(1)).Return([]catalog.Product{}, nil)

	svc := NewAlertService(products, AlertDefaults{})
	fixed := day(2025, 1, 1)
	svc.now = func() time.Time { return fixed }

	alerts, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Milk", alerts[0].Name)

	_, err = svc.ExpiringSoon(ctx, 0, 0)
	require.NoError(t, err)

	call := products.Calls[len(products.Calls)-1]
	assert.Equal(t, fixed.AddDate(0, 0, 14), call.Arguments.Get(1).(time.Time))
	products.AssertExpectations(t)
}

func TestRetryOnStockRace(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := RetryOnStockRace(ctx, 3, nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return shared.NewConcurrentStockChangeError(uuid.New(), uuid.Nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryOnStockRace(ctx, 3, nil, func(context.Context) error {
		calls++
		return shared.ErrValidation
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, 1, calls)
}
