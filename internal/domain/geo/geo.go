// Package geo models the cities and sectors that partition clients and
// sales territories.
package geo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// City is a named city, unique case-insensitively
type City struct {
	shared.BaseEntity
	Name    string
	NameKey string
}

// NewCity creates a city
func NewCity(name string) (*City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("city name is required")
	}
	return &City{BaseEntity: shared.NewBaseEntity(), Name: name, NameKey: shared.NameKey(name)}, nil
}

// Sector is a named area of a city, unique per city
type Sector struct {
	shared.BaseEntity
	CityID  uuid.UUID
	Name    string
	NameKey string
}

// NewSector creates a sector
func NewSector(cityID uuid.UUID, name string) (*Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("sector name is required")
	}
	if cityID == uuid.Nil {
		return nil, shared.NewValidationError("sector requires a city")
	}
	return &Sector{BaseEntity: shared.NewBaseEntity(), CityID: cityID, Name: name, NameKey: shared.NameKey(name)}, nil
}

// CascadePlan lists everything a deletion removes or detaches. Executing
// it removes sector memberships of sellers and delivery men, detaches
// clients from the sectors, deletes the sectors and finally the city.
type CascadePlan struct {
	CityID    *uuid.UUID
	SectorIDs []uuid.UUID
}

// PlanCityDeletion plans deleting a city with all its sectors
func PlanCityDeletion(city *City, sectors []Sector) CascadePlan {
	id := city.ID
	plan := CascadePlan{CityID: &id, SectorIDs: make([]uuid.UUID, 0, len(sectors))}
	for _, s := range sectors {
		if s.CityID == city.ID {
			plan.SectorIDs = append(plan.SectorIDs, s.ID)
		}
	}
	return plan
}

// PlanSectorDeletion plans deleting a single sector
func PlanSectorDeletion(sector *Sector) CascadePlan {
	return CascadePlan{SectorIDs: []uuid.UUID{sector.ID}}
}

// Repository persists cities and sectors and executes cascade plans.
// ExecuteCascade must run inside the caller's transaction.
type Repository interface {
	FindCity(ctx context.Context, id uuid.UUID) (*City, error)
	ListCities(ctx context.Context) ([]City, error)
	CityNameExists(ctx context.Context, key string) (bool, error)
	CreateCity(ctx context.Context, city *City) error

	FindSector(ctx context.Context, id uuid.UUID) (*Sector, error)
	ListSectors(ctx context.Context, cityID uuid.UUID) ([]Sector, error)
	SectorNameExists(ctx context.Context, cityID uuid.UUID, key string) (bool, error)
	CreateSector(ctx context.Context, sector *Sector) error

	ExecuteCascade(ctx context.Context, plan CascadePlan) error
}
