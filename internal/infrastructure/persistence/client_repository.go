package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client regardless of owner
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return r.FindScoped(ctx, id, identity.Unrestricted())
}

// FindScoped finds a client visible under scope
func (r *GormClientRepository) FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*partner.Client, error) {
	var model models.ClientModel
	if err := applyScope(r.db.WithContext(ctx), scope).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// List returns a page of clients ordered by name
func (r *GormClientRepository) List(ctx context.Context, filter partner.ClientFilter) ([]partner.Client, int64, error) {
	query := applyScope(r.db.WithContext(ctx).Model(&models.ClientModel{}), filter.Scope)
	if filter.SectorID != nil {
		query = query.Where("sector_id = ?", *filter.SectorID)
	}
	if filter.CityID != nil {
		query = query.Where("city_id = ?", *filter.CityID)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(name_key LIKE ? ESCAPE '\' OR LOWER(client_number) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	if err := paginate(query, filter.Pagination).Order("name_key ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

// ExistsByNameKey checks the folded name among a seller's clients
func (r *GormClientRepository) ExistsByNameKey(ctx context.Context, sellerID uuid.UUID, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("seller_id = ? AND name_key = ?", sellerID, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByNumber checks whether a client number is taken
func (r *GormClientRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("client_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a client
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	return r.db.WithContext(ctx).Create(models.ClientModelFromDomain(client)).Error
}

// IncrementOrders atomically bumps number_of_orders
func (r *GormClientRepository) IncrementOrders(ctx context.Context, id uuid.UUID, by int64) error {
	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Update("number_of_orders", gorm.Expr("number_of_orders + ?", by))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
