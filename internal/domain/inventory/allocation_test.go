package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func batch(productID uuid.UUID, qty, remaining int64, expiry time.Time) SupplyBatch {
	return SupplyBatch{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		SupplyDate:   date(2024, 12, 1),
		Quantity:     qty,
		RemainingQty: remaining,
		ExpiryDate:   expiry,
	}
}

func TestPlanConsumption_SoonestExpiryFirst(t *testing.T) {
	productID := uuid.New()
	later := batch(productID, 10, 10, date(2025, 2, 1))
	sooner := batch(productID, 5, 5, date(2025, 1, 10))

	plan, err := PlanConsumption(productID, 8, []SupplyBatch{later, sooner})
	require.NoError(t, err)

	require.Len(t, plan.Takes, 2)
	assert.Equal(t, BatchMovement{BatchID: sooner.ID, Quantity: 5}, plan.Takes[0])
	assert.Equal(t, BatchMovement{BatchID: later.ID, Quantity: 3}, plan.Takes[1])
}

func TestPlanConsumption_SkipsEmptyBatches(t *testing.T) {
	productID := uuid.New()
	empty := batch(productID, 4, 0, date(2025, 1, 1))
	full := batch(productID, 4, 4, date(2025, 3, 1))

	plan, err := PlanConsumption(productID, 2, []SupplyBatch{empty, full})
	require.NoError(t, err)
	require.Len(t, plan.Takes, 1)
	assert.Equal(t, full.ID, plan.Takes[0].BatchID)
}

func TestPlanConsumption_TieBreaksOnSupplyDate(t *testing.T) {
	productID := uuid.New()
	expiry := date(2025, 5, 1)
	older := batch(productID, 3, 3, expiry)
	older.SupplyDate = date(2025, 1, 1)
	newer := batch(productID, 3, 3, expiry)
	newer.SupplyDate = date(2025, 2, 1)

	plan, err := PlanConsumption(productID, 4, []SupplyBatch{newer, older})
	require.NoError(t, err)
	require.Len(t, plan.Takes, 2)
	assert.Equal(t, older.ID, plan.Takes[0].BatchID)
	assert.Equal(t, int64(3), plan.Takes[0].Quantity)
	assert.Equal(t, int64(1), plan.Takes[1].Quantity)
}

func TestPlanConsumption_Insufficient(t *testing.T) {
	productID := uuid.New()
	batches := []SupplyBatch{
		batch(productID, 5, 2, date(2025, 1, 10)),
		batch(productID, 5, 3, date(2025, 2, 10)),
	}

	_, err := PlanConsumption(productID, 6, batches)
	require.Error(t, err)

	var stockErr *shared.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, productID, stockErr.ProductID)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, int64(5), stockErr.Available)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestPlanCounterConsumption_UnbatchedAfterBatches(t *testing.T) {
	productID := uuid.New()
	b := batch(productID, 2, 2, date(2025, 1, 10))

	plan, err := PlanCounterConsumption(productID, 6, []SupplyBatch{b}, 7)
	require.NoError(t, err)
	require.Len(t, plan.Takes, 1)
	assert.Equal(t, BatchMovement{BatchID: b.ID, Quantity: 2}, plan.Takes[0])
	assert.Equal(t, int64(4), plan.Unbatched)

	plan, err = PlanCounterConsumption(productID, 2, []SupplyBatch{b}, 7)
	require.NoError(t, err)
	assert.Zero(t, plan.Unbatched)

	_, err = PlanCounterConsumption(productID, 8, []SupplyBatch{b}, 7)
	var stockErr *shared.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(7), stockErr.Available)
}

func TestPlanCounterConsumption_CounterBelowBatchesAddsNothing(t *testing.T) {
	productID := uuid.New()
	plan, err := PlanCounterConsumption(productID, 3, []SupplyBatch{batch(productID, 5, 5, date(2025, 1, 10))}, 1)
	require.NoError(t, err)
	assert.Zero(t, plan.Unbatched)
}

func TestPlanConsumption_RejectsNonPositive(t *testing.T) {
	_, err := PlanConsumption(uuid.New(), 0, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPlanReplenishment_LatestExpiryFirst(t *testing.T) {
	productID := uuid.New()
	sooner := batch(productID, 5, 0, date(2025, 1, 10))
	later := batch(productID, 10, 7, date(2025, 2, 1))

	plan, err := PlanReplenishment(productID, 8, []SupplyBatch{sooner, later})
	require.NoError(t, err)

	require.Len(t, plan.Returns, 2)
	assert.Equal(t, BatchMovement{BatchID: later.ID, Quantity: 3}, plan.Returns[0])
	assert.Equal(t, BatchMovement{BatchID: sooner.ID, Quantity: 5}, plan.Returns[1])
	assert.Zero(t, plan.Overflow)
}

func TestPlanReplenishment_Overflow(t *testing.T) {
	productID := uuid.New()
	b := batch(productID, 5, 3, date(2025, 1, 10))

	plan, err := PlanReplenishment(productID, 6, []SupplyBatch{b})
	require.NoError(t, err)

	require.Len(t, plan.Returns, 1)
	assert.Equal(t, int64(2), plan.Returns[0].Quantity)
	assert.Equal(t, int64(4), plan.Overflow)
}

func TestPlanReplenishment_NoBatches(t *testing.T) {
	plan, err := PlanReplenishment(uuid.New(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Returns)
	assert.Equal(t, int64(3), plan.Overflow)
}

func TestNextExpiry(t *testing.T) {
	productID := uuid.New()
	emptySoonest := batch(productID, 5, 0, date(2025, 1, 1))
	mid := batch(productID, 5, 1, date(2025, 3, 1))
	late := batch(productID, 5, 5, date(2025, 6, 1))

	next := NextExpiry([]SupplyBatch{late, emptySoonest, mid})
	require.NotNil(t, next)
	assert.Equal(t, mid.ID, next.ID)

	assert.Nil(t, NextExpiry([]SupplyBatch{emptySoonest}))
}

func TestNewSupplyBatch(t *testing.T) {
	productID := uuid.New()

	b, err := NewSupplyBatch(productID, 12, date(2025, 9, 1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), b.RemainingQty)
	assert.False(t, b.SupplyDate.IsZero())
	assert.Zero(t, b.Capacity())
	assert.False(t, b.IsExhausted())
	assert.True(t, b.IsExpired(date(2025, 9, 2)))

	_, err = NewSupplyBatch(productID, 0, date(2025, 9, 1), time.Time{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewSupplyBatch(productID, 3, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
