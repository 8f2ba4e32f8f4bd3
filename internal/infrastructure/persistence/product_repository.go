package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM.
// The stock columns are owned by GormStockRepository.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the products that exist among ids
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// List returns a page of products ordered by name
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.Search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(filter.Search))
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := paginate(query, filter.Pagination).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return productsToDomain(rows), total, nil
}

// FindBelowStock returns products whose current stock is below threshold
func (r *GormProductRepository) FindBelowStock(ctx context.Context, threshold int64) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("current_stock < ?", threshold).
		Order("current_stock ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindExpiringBefore returns products whose next expiry is at or before cutoff
func (r *GormProductRepository) FindExpiringBefore(ctx context.Context, cutoff time.Time, minQty int64) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("next_expiry_date IS NOT NULL AND next_expiry_date <= ? AND current_stock >= ?", cutoff, minQty).
		Order("next_expiry_date ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Create inserts a product together with its initial stock columns
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error
}

// Update writes descriptive, price and discount fields and bumps the version
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	m := models.ProductModelFromDomain(product)
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"category_id":             m.CategoryID,
			"name":                    m.Name,
			"picture_url":             m.PictureURL,
			"unit_price":              m.UnitPrice,
			"discount_min_qty":        m.DiscountMinQty,
			"discount_percent":        m.DiscountPercent,
			"global_discount_percent": m.GlobalDiscountPercent,
			"updated_at":              m.UpdatedAt,
			"version":                 gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
