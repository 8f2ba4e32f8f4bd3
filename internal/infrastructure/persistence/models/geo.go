package models

import (
	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
)

// CityModel is the persistence model for a city.
type CityModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(100);not null"`
	NameKey string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CityModel) TableName() string {
	return "cities"
}

// ToDomain converts the persistence model to a domain City.
func (m *CityModel) ToDomain() *geo.City {
	return &geo.City{BaseEntity: m.BaseModel.ToDomain(), Name: m.Name, NameKey: m.NameKey}
}

// SectorModel is the persistence model for a sector. Names are unique per city.
type SectorModel struct {
	BaseModel
	CityID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sectors_city_name,priority:1"`
	Name    string    `gorm:"type:varchar(100);not null"`
	NameKey string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sectors_city_name,priority:2"`
}

// TableName returns the table name for GORM
func (SectorModel) TableName() string {
	return "sectors"
}

// ToDomain converts the persistence model to a domain Sector.
func (m *SectorModel) ToDomain() *geo.Sector {
	return &geo.Sector{BaseEntity: m.BaseModel.ToDomain(), CityID: m.CityID, Name: m.Name, NameKey: m.NameKey}
}
