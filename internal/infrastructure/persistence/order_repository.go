package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindScoped finds an order visible under scope
func (r *GormOrderRepository) FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*partner.Order, error) {
	var model models.OrderModel
	if err := applyScope(r.db.WithContext(ctx), scope).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// List returns a page of orders, soonest wanted date first
func (r *GormOrderRepository) List(ctx context.Context, filter partner.OrderFilter) ([]partner.Order, int64, error) {
	query := applyScope(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter.Scope)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.From != nil {
		query = query.Where("wanted_date >= ?", *filter.From)
	}
	if filter.Until != nil {
		query = query.Where("wanted_date < ?", *filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := paginate(query, filter.Pagination).Order("wanted_date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]partner.Order, len(rows))
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("decode order %s: %w", rows[i].ID, err)
		}
		orders[i] = *o
	}
	return orders, total, nil
}

// Create inserts an order
func (r *GormOrderRepository) Create(ctx context.Context, order *partner.Order) error {
	model, err := models.OrderModelFromDomain(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Update replaces items, wanted date, status and sale link
func (r *GormOrderRepository) Update(ctx context.Context, order *partner.Order) error {
	model, err := models.OrderModelFromDomain(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"items":       model.Items,
			"wanted_date": model.WantedDate,
			"status":      model.Status,
			"sale_id":     model.SaleID,
			"updated_at":  model.UpdatedAt,
			"version":     model.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes an order
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCreatedBefore removes orders created before cutoff
func (r *GormOrderRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.OrderModel{})
	return result.RowsAffected, result.Error
}

var _ partner.OrderRepository = (*GormOrderRepository)(nil)
