package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ListFilter narrows sale listings to dates in [From, Until)
type ListFilter struct {
	From     time.Time
	Until    time.Time
	Status   *DeliveryStatus
	ClientID *uuid.UUID
	Scope    identity.Scope
	shared.Pagination
}

// StatsFilter selects the sales that feed aggregates. Until is exclusive.
type StatsFilter struct {
	From  *time.Time
	Until *time.Time
	Scope identity.Scope
}

// Amounts are sums over a set of sales
type Amounts struct {
	Count        int64
	TotalAmount  decimal.Decimal
	NetAmount    decimal.Decimal
	ReturnTotal  decimal.Decimal
	ReturnGlobal decimal.Decimal
	AmountPaid   decimal.Decimal
}

// Repository persists sales
type Repository interface {
	// Create inserts a sale with its line items
	Create(ctx context.Context, sale *Sale) error

	// FindByID finds a sale regardless of owner
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindScoped finds a sale visible under scope, ErrNotFound otherwise
	FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*Sale, error)

	// List returns a page of sales ordered by date descending
	List(ctx context.Context, filter ListFilter) ([]Sale, int64, error)

	// ListForExport returns every sale matching the filter
	ListForExport(ctx context.Context, filter StatsFilter) ([]Sale, error)

	// UpdateSettlement writes status, returns and payment fields only when
	// the stored version still equals expectedVersion
	UpdateSettlement(ctx context.Context, sale *Sale, expectedVersion int) error

	// SetInvoiceURL stores the invoice link without touching the version
	SetInvoiceURL(ctx context.Context, id uuid.UUID, url string) error

	// SumDelivered aggregates amounts over delivered sales
	SumDelivered(ctx context.Context, filter StatsFilter) (Amounts, error)

	// CountByStatus counts sales per delivery status
	CountByStatus(ctx context.Context, filter StatsFilter) (map[DeliveryStatus]int64, error)
}
