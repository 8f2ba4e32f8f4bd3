package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
)

// SaleQueryService answers read-only sale queries under the actor's scope
type SaleQueryService struct {
	saleRepo sales.Repository
}

// NewSaleQueryService creates a new SaleQueryService
func NewSaleQueryService(saleRepo sales.Repository) *SaleQueryService {
	return &SaleQueryService{saleRepo: saleRepo}
}

// List returns a page of sales between From and To, newest first
func (s *SaleQueryService) List(ctx context.Context, actor identity.Actor, req SaleListRequest) (*shared.Paginated[SaleResponse], error) {
	if req.From.IsZero() || req.To.IsZero() {
		return nil, shared.NewValidationError("from and to are required")
	}
	if !req.To.End().After(req.From.Start()) {
		return nil, shared.NewValidationError("to must not be before from")
	}

	filter := sales.ListFilter{
		From:       req.From.Start(),
		Until:      req.To.End(),
		ClientID:   req.ClientID,
		Scope:      actor.SaleScope(),
		Pagination: shared.Pagination{Page: req.Page, Limit: req.Limit}.Normalize(),
	}
	if req.Status != "" {
		status := sales.DeliveryStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("invalid delivery status %q", req.Status)
		}
		filter.Status = &status
	}

	items, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, len(items))
	for i := range items {
		out[i] = ToSaleResponse(&items[i])
	}
	result := shared.NewPaginated(out, total, filter.Pagination)
	return &result, nil
}

// Get returns one sale; out-of-scope sales are reported as not found
func (s *SaleQueryService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindScoped(ctx, id, actor.SaleScope())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("sale", id)
		}
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}
