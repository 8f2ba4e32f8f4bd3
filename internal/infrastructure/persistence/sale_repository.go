package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements sales.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts a sale with its line items
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	model, err := models.SaleModelFromDomain(sale)
	if err != nil {
		return fmt.Errorf("encode sale %s: %w", sale.ID, err)
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a sale regardless of owner
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return r.FindScoped(ctx, id, identity.Unrestricted())
}

// FindScoped finds a sale visible under scope
func (r *GormSaleRepository) FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*sales.Sale, error) {
	var model models.SaleModel
	query := applyScope(r.db.WithContext(ctx), scope).Where("id = ?", id)
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// List returns a page of sales ordered by date descending
func (r *GormSaleRepository) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, int64, error) {
	query := applyScope(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter.Scope).
		Where("date >= ? AND date < ?", filter.From, filter.Until)
	if filter.Status != nil {
		query = query.Where("delivery_status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := paginate(query, filter.Pagination).Order("date DESC, sale_number DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	list, err := salesToDomain(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListForExport returns every sale matching the filter, oldest first
func (r *GormSaleRepository) ListForExport(ctx context.Context, filter sales.StatsFilter) ([]sales.Sale, error) {
	var rows []models.SaleModel
	if err := r.statsQuery(ctx, filter).Order("date ASC, sale_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return salesToDomain(rows)
}

// UpdateSettlement writes the settlement fields when the stored version
// still equals expectedVersion
func (r *GormSaleRepository) UpdateSettlement(ctx context.Context, sale *sales.Sale, expectedVersion int) error {
	model, err := models.SaleModelFromDomain(sale)
	if err != nil {
		return fmt.Errorf("encode sale %s: %w", sale.ID, err)
	}
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("id = ? AND version = ?", sale.ID, expectedVersion).
		Updates(map[string]any{
			"delivery_status": model.DeliveryStatus,
			"return_items":    model.ReturnItems,
			"return_total":    model.ReturnTotal,
			"return_global":   model.ReturnGlobal,
			"net_amount":      model.NetAmount,
			"payment_method":  model.PaymentMethod,
			"amount_paid":     model.AmountPaid,
			"updated_at":      model.UpdatedAt,
			"version":         model.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SetInvoiceURL stores the invoice link without touching the version
func (r *GormSaleRepository) SetInvoiceURL(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("id = ?", id).
		Update("invoice_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type amountsRow struct {
	Count        int64
	TotalAmount  decimal.NullDecimal
	NetAmount    decimal.NullDecimal
	ReturnTotal  decimal.NullDecimal
	ReturnGlobal decimal.NullDecimal
	AmountPaid   decimal.NullDecimal
}

// SumDelivered aggregates amounts over delivered sales
func (r *GormSaleRepository) SumDelivered(ctx context.Context, filter sales.StatsFilter) (sales.Amounts, error) {
	var row amountsRow
	err := r.statsQuery(ctx, filter).
		Where("delivery_status = ?", sales.DeliveryDelivered).
		Select(`COUNT(*) AS count,
			SUM(total_amount) AS total_amount,
			SUM(net_amount) AS net_amount,
			SUM(return_total) AS return_total,
			SUM(return_global) AS return_global,
			SUM(amount_paid) AS amount_paid`).
		Scan(&row).Error
	if err != nil {
		return sales.Amounts{}, err
	}
	return sales.Amounts{
		Count:        row.Count,
		TotalAmount:  row.TotalAmount.Decimal,
		NetAmount:    row.NetAmount.Decimal,
		ReturnTotal:  row.ReturnTotal.Decimal,
		ReturnGlobal: row.ReturnGlobal.Decimal,
		AmountPaid:   row.AmountPaid.Decimal,
	}, nil
}

// CountByStatus counts sales per delivery status
func (r *GormSaleRepository) CountByStatus(ctx context.Context, filter sales.StatsFilter) (map[sales.DeliveryStatus]int64, error) {
	var rows []struct {
		DeliveryStatus sales.DeliveryStatus
		Count          int64
	}
	err := r.statsQuery(ctx, filter).
		Select("delivery_status, COUNT(*) AS count").
		Group("delivery_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[sales.DeliveryStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.DeliveryStatus] = row.Count
	}
	return counts, nil
}

func (r *GormSaleRepository) statsQuery(ctx context.Context, filter sales.StatsFilter) *gorm.DB {
	query := applyScope(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter.Scope)
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.Until != nil {
		query = query.Where("date < ?", *filter.Until)
	}
	return query
}

func salesToDomain(rows []models.SaleModel) ([]sales.Sale, error) {
	list := make([]sales.Sale, len(rows))
	for i := range rows {
		s, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("decode sale %s: %w", rows[i].ID, err)
		}
		list[i] = *s
	}
	return list, nil
}

var _ sales.Repository = (*GormSaleRepository)(nil)
