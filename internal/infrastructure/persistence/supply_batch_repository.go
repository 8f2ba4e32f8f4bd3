package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByProduct returns all batches of a product, earliest expiry first
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindConsumable returns batches of a product with remaining stock, earliest expiry first
func (r *GormBatchRepository) FindConsumable(ctx context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ? AND remaining_qty > 0", productID))
}

func (r *GormBatchRepository) find(query *gorm.DB) ([]inventory.SupplyBatch, error) {
	var rows []models.SupplyBatchModel
	if err := query.Order("expiry_date ASC, supply_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.SupplyBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Create inserts a batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *inventory.SupplyBatch) error {
	return r.db.WithContext(ctx).Create(models.SupplyBatchModelFromDomain(batch)).Error
}

// DecrementIfAvailable subtracts qty only when remaining_qty >= qty
func (r *GormBatchRepository) DecrementIfAvailable(ctx context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.SupplyBatchModel{}).
		Where("id = ? AND remaining_qty >= ?", batchID, qty).
		Updates(map[string]any{
			"remaining_qty": gorm.Expr("remaining_qty - ?", qty),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementIfCapacity adds qty only when remaining_qty + qty <= quantity
func (r *GormBatchRepository) IncrementIfCapacity(ctx context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.SupplyBatchModel{}).
		Where("id = ? AND remaining_qty + ? <= quantity", batchID, qty).
		Updates(map[string]any{
			"remaining_qty": gorm.Expr("remaining_qty + ?", qty),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteExhaustedBefore removes empty batches supplied before cutoff
func (r *GormBatchRepository) DeleteExhaustedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("remaining_qty = 0 AND supply_date < ?", cutoff).
		Delete(&models.SupplyBatchModel{})
	return result.RowsAffected, result.Error
}

// GormStockRepository maintains the current_stock and next_expiry_date
// columns of products
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// DecrementStock subtracts qty only when current_stock >= qty
func (r *GormStockRepository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND current_stock >= ?", productID, qty).
		Update("current_stock", gorm.Expr("current_stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock adds qty to the product's stock
func (r *GormStockRepository) IncrementStock(ctx context.Context, productID uuid.UUID, qty int64) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Update("current_stock", gorm.Expr("current_stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetNextExpiry stores the soonest expiry of the product's non-empty batches
func (r *GormStockRepository) SetNextExpiry(ctx context.Context, productID uuid.UUID, expiry *time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Update("next_expiry_date", expiry).Error
}

// CurrentStock reads the product's stock counter
func (r *GormStockRepository) CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Select("current_stock").First(&model, "id = ?", productID).Error; err != nil {
		return 0, notFound(err)
	}
	return model.CurrentStock, nil
}

var (
	_ inventory.BatchRepository = (*GormBatchRepository)(nil)
	_ inventory.StockRepository = (*GormStockRepository)(nil)
)
