package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGeoRepository implements geo.Repository using GORM
type GormGeoRepository struct {
	db *gorm.DB
}

// NewGormGeoRepository creates a new GormGeoRepository
func NewGormGeoRepository(db *gorm.DB) *GormGeoRepository {
	return &GormGeoRepository{db: db}
}

// FindCity finds a city by ID
func (r *GormGeoRepository) FindCity(ctx context.Context, id uuid.UUID) (*geo.City, error) {
	var model models.CityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListCities returns all cities ordered by name
func (r *GormGeoRepository) ListCities(ctx context.Context) ([]geo.City, error) {
	var rows []models.CityModel
	if err := r.db.WithContext(ctx).Order("name_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	cities := make([]geo.City, len(rows))
	for i := range rows {
		cities[i] = *rows[i].ToDomain()
	}
	return cities, nil
}

// CityNameExists checks whether a city with the folded name exists
func (r *GormGeoRepository) CityNameExists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CityModel{}).Where("name_key = ?", key).Count(&count).Error
	return count > 0, err
}

// CreateCity inserts a city
func (r *GormGeoRepository) CreateCity(ctx context.Context, city *geo.City) error {
	model := &models.CityModel{Name: city.Name, NameKey: city.NameKey}
	model.FromDomainBaseEntity(city.BaseEntity)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindSector finds a sector by ID
func (r *GormGeoRepository) FindSector(ctx context.Context, id uuid.UUID) (*geo.Sector, error) {
	var model models.SectorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListSectors returns the sectors of a city ordered by name
func (r *GormGeoRepository) ListSectors(ctx context.Context, cityID uuid.UUID) ([]geo.Sector, error) {
	var rows []models.SectorModel
	if err := r.db.WithContext(ctx).Where("city_id = ?", cityID).Order("name_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	sectors := make([]geo.Sector, len(rows))
	for i := range rows {
		sectors[i] = *rows[i].ToDomain()
	}
	return sectors, nil
}

// SectorNameExists checks the folded name among a city's sectors
func (r *GormGeoRepository) SectorNameExists(ctx context.Context, cityID uuid.UUID, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SectorModel{}).
		Where("city_id = ? AND name_key = ?", cityID, key).
		Count(&count).Error
	return count > 0, err
}

// CreateSector inserts a sector
func (r *GormGeoRepository) CreateSector(ctx context.Context, sector *geo.Sector) error {
	model := &models.SectorModel{CityID: sector.CityID, Name: sector.Name, NameKey: sector.NameKey}
	model.FromDomainBaseEntity(sector.BaseEntity)
	return r.db.WithContext(ctx).Create(model).Error
}

// ExecuteCascade removes sector memberships, detaches clients, then deletes
// the sectors and the city. Callers run it inside a transaction.
func (r *GormGeoRepository) ExecuteCascade(ctx context.Context, plan geo.CascadePlan) error {
	db := r.db.WithContext(ctx)
	if len(plan.SectorIDs) > 0 {
		if err := db.Where("sector_id IN ?", plan.SectorIDs).Delete(&models.UserSectorModel{}).Error; err != nil {
			return err
		}
		if err := db.Model(&models.ClientModel{}).
			Where("sector_id IN ?", plan.SectorIDs).
			Update("sector_id", nil).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", plan.SectorIDs).Delete(&models.SectorModel{}).Error; err != nil {
			return err
		}
	}
	if plan.CityID != nil {
		if err := db.Where("id = ?", *plan.CityID).Delete(&models.CityModel{}).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ geo.Repository = (*GormGeoRepository)(nil)
