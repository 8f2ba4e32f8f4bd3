// Package geo provides the city and sector management use cases.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionScope runs fn with a geo repository bound to one transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repo geo.Repository) error) error
}

// CreateCityRequest represents a request to create a city
type CreateCityRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateSectorRequest represents a request to create a sector
type CreateSectorRequest struct {
	CityID uuid.UUID `json:"city_id" binding:"required"`
	Name   string    `json:"name" binding:"required,max=100"`
}

// CityResponse represents a city in API responses
type CityResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SectorResponse represents a sector in API responses
type SectorResponse struct {
	ID        uuid.UUID `json:"id"`
	CityID    uuid.UUID `json:"city_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GeoService manages cities and sectors
type GeoService struct {
	repo    geo.Repository
	txScope TransactionScope
	logger  *zap.Logger
}

// NewGeoService creates a new GeoService
func NewGeoService(repo geo.Repository, txScope TransactionScope, logger *zap.Logger) *GeoService {
	return &GeoService{repo: repo, txScope: txScope, logger: logger}
}

// CreateCity creates a city with a case-insensitively unique name
func (s *GeoService) CreateCity(ctx context.Context, req CreateCityRequest) (*CityResponse, error) {
	city, err := geo.NewCity(req.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.CityNameExists(ctx, city.NameKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "City with this name already exists")
	}
	if err := s.repo.CreateCity(ctx, city); err != nil {
		return nil, err
	}
	return &CityResponse{ID: city.ID, Name: city.Name, CreatedAt: city.CreatedAt}, nil
}

// ListCities returns all cities
func (s *GeoService) ListCities(ctx context.Context) ([]CityResponse, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CityResponse, len(cities))
	for i, c := range cities {
		out[i] = CityResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	}
	return out, nil
}

// DeleteCity deletes a city and its sectors, detaching clients and users
func (s *GeoService) DeleteCity(ctx context.Context, id uuid.UUID) error {
	var plan geo.CascadePlan
	err := s.txScope.Execute(ctx, func(repo geo.Repository) error {
		city, err := repo.FindCity(ctx, id)
		if err != nil {
			return notFound(err, "city", id)
		}
		sectors, err := repo.ListSectors(ctx, city.ID)
		if err != nil {
			return err
		}
		plan = geo.PlanCityDeletion(city, sectors)
		return repo.ExecuteCascade(ctx, plan)
	})
	if err != nil {
		return err
	}
	s.logger.Info("city deleted",
		zap.String("city_id", id.String()),
		zap.Int("sectors", len(plan.SectorIDs)),
	)
	return nil
}

// CreateSector creates a sector with a name unique within its city
func (s *GeoService) CreateSector(ctx context.Context, req CreateSectorRequest) (*SectorResponse, error) {
	if _, err := s.repo.FindCity(ctx, req.CityID); err != nil {
		return nil, notFound(err, "city", req.CityID)
	}
	sector, err := geo.NewSector(req.CityID, req.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.SectorNameExists(ctx, sector.CityID, sector.NameKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Sector with this name already exists in the city")
	}
	if err := s.repo.CreateSector(ctx, sector); err != nil {
		return nil, err
	}
	return toSectorResponse(sector), nil
}

// ListSectorsByCity returns the sectors of a city
func (s *GeoService) ListSectorsByCity(ctx context.Context, cityID uuid.UUID) ([]SectorResponse, error) {
	if _, err := s.repo.FindCity(ctx, cityID); err != nil {
		return nil, notFound(err, "city", cityID)
	}
	sectors, err := s.repo.ListSectors(ctx, cityID)
	if err != nil {
		return nil, err
	}
	out := make([]SectorResponse, len(sectors))
	for i := range sectors {
		out[i] = *toSectorResponse(&sectors[i])
	}
	return out, nil
}

// DeleteSector deletes a sector, detaching clients and users
func (s *GeoService) DeleteSector(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repo geo.Repository) error {
		sector, err := repo.FindSector(ctx, id)
		if err != nil {
			return notFound(err, "sector", id)
		}
		return repo.ExecuteCascade(ctx, geo.PlanSectorDeletion(sector))
	})
	if err != nil {
		return err
	}
	s.logger.Info("sector deleted", zap.String("sector_id", id.String()))
	return nil
}

// FindSector resolves a sector for other services
func (s *GeoService) FindSector(ctx context.Context, id uuid.UUID) (*geo.Sector, error) {
	return s.repo.FindSector(ctx, id)
}

func toSectorResponse(s *geo.Sector) *SectorResponse {
	return &SectorResponse{ID: s.ID, CityID: s.CityID, Name: s.Name, CreatedAt: s.CreatedAt}
}

func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}
