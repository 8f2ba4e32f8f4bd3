package models

import (
	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root.
// Sector memberships live in user_sectors.
type UserModel struct {
	AggregateModel
	Username     string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;index"`
	SellerID     *uuid.UUID    `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
// SectorIDs are loaded separately by the repository.
func (m *UserModel) ToDomain(sectorIDs []uuid.UUID) *identity.User {
	if sectorIDs == nil {
		sectorIDs = make([]uuid.UUID, 0)
	}
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		SellerID:          m.SellerID,
		SectorIDs:         sectorIDs,
	}
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		SellerID:     u.SellerID,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// UserSectorModel links a user to a sector they serve.
type UserSectorModel struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	SectorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (UserSectorModel) TableName() string {
	return "user_sectors"
}
