package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/inventory"
)

// SupplyBatchModel is the persistence model for a supply batch.
// 0 <= remaining_qty <= quantity is enforced by a CHECK constraint.
type SupplyBatchModel struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index:idx_supply_batches_product_expiry,priority:1"`
	SupplyDate   time.Time `gorm:"not null"`
	Quantity     int64     `gorm:"not null"`
	RemainingQty int64     `gorm:"not null"`
	ExpiryDate   time.Time `gorm:"not null;index:idx_supply_batches_product_expiry,priority:2"`
}

// TableName returns the table name for GORM
func (SupplyBatchModel) TableName() string {
	return "supply_batches"
}

// ToDomain converts the persistence model to a domain SupplyBatch.
func (m *SupplyBatchModel) ToDomain() *inventory.SupplyBatch {
	return &inventory.SupplyBatch{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		SupplyDate:   m.SupplyDate,
		Quantity:     m.Quantity,
		RemainingQty: m.RemainingQty,
		ExpiryDate:   m.ExpiryDate,
	}
}

// SupplyBatchModelFromDomain creates a persistence model from a domain SupplyBatch.
func SupplyBatchModelFromDomain(b *inventory.SupplyBatch) *SupplyBatchModel {
	m := &SupplyBatchModel{
		ProductID:    b.ProductID,
		SupplyDate:   b.SupplyDate,
		Quantity:     b.Quantity,
		RemainingQty: b.RemainingQty,
		ExpiryDate:   b.ExpiryDate,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}
