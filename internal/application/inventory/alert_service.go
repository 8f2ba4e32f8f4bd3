package inventory

import (
	"context"
	"time"

	"github.com/stockroute/backend/internal/domain/catalog"
)

// AlertDefaults hold the thresholds used when a query leaves them unset
type AlertDefaults struct {
	LowStockThreshold  int64
	ExpiringWithinDays int
	ExpiringMinQty     int64
}

// AlertService answers stock alert queries
type AlertService struct {
	productRepo catalog.ProductRepository
	defaults    AlertDefaults
	now         func() time.Time
}

// NewAlertService creates a new AlertService
func NewAlertService(productRepo catalog.ProductRepository, defaults AlertDefaults) *AlertService {
	if defaults.LowStockThreshold <= 0 {
		defaults.LowStockThreshold = 10
	}
	if defaults.ExpiringWithinDays <= 0 {
		defaults.ExpiringWithinDays = 14
	}
	if defaults.ExpiringMinQty <= 0 {
		defaults.ExpiringMinQty = 1
	}
	return &AlertService{productRepo: productRepo, defaults: defaults, now: time.Now}
}

// LowStock lists products whose stock is below threshold
func (s *AlertService) LowStock(ctx context.Context, threshold int64) ([]StockAlert, error) {
	if threshold <= 0 {
		threshold = s.defaults.LowStockThreshold
	}
	products, err := s.productRepo.FindBelowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return toStockAlerts(products), nil
}

// ExpiringSoon lists products whose next expiry falls within days and that
// still hold at least minQty units
func (s *AlertService) ExpiringSoon(ctx context.Context, days int, minQty int64) ([]StockAlert, error) {
	if days <= 0 {
		days = s.defaults.ExpiringWithinDays
	}
	if minQty <= 0 {
		minQty = s.defaults.ExpiringMinQty
	}
	cutoff := s.now().AddDate(0, 0, days)
	products, err := s.productRepo.FindExpiringBefore(ctx, cutoff, minQty)
	if err != nil {
		return nil, err
	}
	return toStockAlerts(products), nil
}
