package persistence

import (
	"context"
	"time"

	"github.com/stockroute/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSaleSequenceRepository hands out per-day sale numbers from the
// sale_sequences table
type GormSaleSequenceRepository struct {
	db *gorm.DB
}

// NewGormSaleSequenceRepository creates a new GormSaleSequenceRepository
func NewGormSaleSequenceRepository(db *gorm.DB) *GormSaleSequenceRepository {
	return &GormSaleSequenceRepository{db: db}
}

// NextValue increments and returns the counter of the given UTC day in one statement
func (r *GormSaleSequenceRepository) NextValue(ctx context.Context, day time.Time) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO sale_sequences (day, value) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET value = sale_sequences.value + 1
		 RETURNING value`,
		sales.SaleDay(day).Format("20060102"),
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

var _ sales.SequenceRepository = (*GormSaleSequenceRepository)(nil)
