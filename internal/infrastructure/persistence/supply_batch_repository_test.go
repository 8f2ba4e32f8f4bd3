package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, stock int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), "Olive oil", decimal.NewFromInt(40))
	require.NoError(t, err)
	p.CurrentStock = stock
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

func seedBatch(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int64, expiry, supplied time.Time) *inventory.SupplyBatch {
	t.Helper()
	b, err := inventory.NewSupplyBatch(productID, qty, expiry, supplied)
	require.NoError(t, err)
	require.NoError(t, NewGormBatchRepository(db).Create(context.Background(), b))
	return b
}

func TestGormBatchRepository_ConditionalUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := seedProduct(t, db, 10)
	batch := seedBatch(t, db, p.ID, 10, now.AddDate(0, 1, 0), now)

	ok, err := repo.DecrementIfAvailable(ctx, batch.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementIfAvailable(ctx, batch.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok, "only 6 units remain")

	ok, err = repo.IncrementIfCapacity(ctx, batch.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok, "capacity is 4")

	ok, err = repo.IncrementIfCapacity(ctx, batch.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	batches, err := repo.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, int64(10), batches[0].RemainingQty)
}

func TestGormBatchRepository_FindConsumableOrdersByExpiry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := seedProduct(t, db, 0)
	late := seedBatch(t, db, p.ID, 5, now.AddDate(0, 2, 0), now)
	early := seedBatch(t, db, p.ID, 5, now.AddDate(0, 1, 0), now)
	empty := seedBatch(t, db, p.ID, 3, now.AddDate(0, 0, 5), now)
	ok, err := repo.DecrementIfAvailable(ctx, empty.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	consumable, err := repo.FindConsumable(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, consumable, 2)
	assert.Equal(t, early.ID, consumable[0].ID)
	assert.Equal(t, late.ID, consumable[1].ID)

	all, err := repo.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormBatchRepository_DeleteExhaustedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := seedProduct(t, db, 0)
	old := seedBatch(t, db, p.ID, 2, now.AddDate(-1, 1, 0), now.AddDate(-2, 0, 0))
	oldWithStock := seedBatch(t, db, p.ID, 2, now.AddDate(-1, 1, 0), now.AddDate(-2, 0, 0))
	recent := seedBatch(t, db, p.ID, 2, now.AddDate(0, 1, 0), now)
	for _, id := range []uuid.UUID{old.ID, recent.ID} {
		ok, err := repo.DecrementIfAvailable(ctx, id, 2)
		require.NoError(t, err)
		require.True(t, ok)
	}

	n, err := repo.DeleteExhaustedBefore(ctx, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	ids := []uuid.UUID{left[0].ID, left[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{oldWithStock.ID, recent.ID}, ids)
}

func TestGormBatchRepository_DecrementSQL(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE "supply_batches" SET .* WHERE id = \$\d+ AND remaining_qty >= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewGormBatchRepository(db).DecrementIfAvailable(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()
	p := seedProduct(t, db, 5)

	ok, err := repo.DecrementStock(ctx, p.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.IncrementStock(ctx, p.ID, 3))
	stock, err := repo.CurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stock)

	assert.ErrorIs(t, repo.IncrementStock(ctx, uuid.New(), 1), shared.ErrNotFound)
	_, err = repo.CurrentStock(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	expiry := time.Now().UTC().Truncate(time.Second).AddDate(0, 0, 3)
	require.NoError(t, repo.SetNextExpiry(ctx, p.ID, &expiry))
	found, err := NewGormProductRepository(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, found.NextExpiryDate)
	assert.True(t, expiry.Equal(*found.NextExpiryDate))

	require.NoError(t, repo.SetNextExpiry(ctx, p.ID, nil))
	found, err = NewGormProductRepository(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, found.NextExpiryDate)
}

func TestGormSaleSequenceRepository_NextValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleSequenceRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextValue(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.NextValue(ctx, day.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "a new UTC day restarts the sequence")
	assert.Equal(t, "S-20240310-0001", sales.FormatSaleNumber(sales.SaleDay(day.Add(time.Hour)), got))
}
