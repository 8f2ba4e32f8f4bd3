package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleBuilder builds a sale from resolved line items
type SaleBuilder interface {
	Build(ctx context.Context, spec salesapp.BuildSpec) (*sales.Sale, error)
}

// OrderService handles delivery order operations
type OrderService struct {
	orderRepo  partner.OrderRepository
	clientRepo partner.ClientRepository
	builder    SaleBuilder
	logger     *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo partner.OrderRepository, clientRepo partner.ClientRepository, builder SaleBuilder, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		clientRepo: clientRepo,
		builder:    builder,
		logger:     logger,
	}
}

// Create raises an order for one of the delivery man's clients
func (s *OrderService) Create(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	if actor.Role != identity.RoleDelivery {
		return nil, shared.ErrForbidden
	}
	client, err := s.clientRepo.FindScoped(ctx, req.ClientID, identity.DeliveryScope(actor.ID))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("client", req.ClientID)
		}
		return nil, err
	}

	order, err := partner.NewOrder(actor.ID, client, toOrderItems(req.Items), req.WantedDate)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns a page of orders visible to the actor
func (s *OrderService) List(ctx context.Context, actor identity.Actor, req OrderListRequest) (*shared.Paginated[OrderResponse], error) {
	filter := partner.OrderFilter{
		Scope:      actor.OrderScope(),
		ClientID:   req.ClientID,
		From:       req.From.StartPtr(),
		Until:      req.To.EndPtr(),
		Pagination: shared.Pagination{Page: req.Page, Limit: req.Limit}.Normalize(),
	}
	if req.Status != "" {
		status := partner.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("invalid order status %q", req.Status)
		}
		filter.Status = &status
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	result := shared.NewPaginated(out, total, filter.Pagination)
	return &result, nil
}

// Get returns one order visible to the actor
func (s *OrderService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Update changes an order. Delivery men may change items, wanted date and
// status; sellers only the status.
func (s *OrderService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	if actor.Role == identity.RoleSeller && (len(req.Items) > 0 || req.WantedDate != nil) {
		return nil, shared.NewDomainError(shared.CodeForbidden, "sellers may only change the order status")
	}
	order, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if len(req.Items) > 0 {
		if err := order.ReplaceItems(toOrderItems(req.Items)); err != nil {
			return nil, err
		}
	}
	if req.WantedDate != nil {
		if err := order.Reschedule(*req.WantedDate); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := order.SetStatus(partner.OrderStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes an order visible to the actor
func (s *OrderService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if _, err := s.find(ctx, actor, id); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, id)
}

// ConvertToSale turns a pending order into a sale by its seller. The
// order is marked done in the sale's transaction.
func (s *OrderService) ConvertToSale(ctx context.Context, actor identity.Actor, id uuid.UUID) (*salesapp.SaleResponse, error) {
	if actor.Role != identity.RoleSeller {
		return nil, shared.ErrForbidden
	}
	order, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Status != partner.OrderPending && order.Status != partner.OrderInProgress {
		return nil, shared.NewInvalidStateError("order %s is %s and cannot be converted", order.ID, order.Status)
	}

	items := make([]salesapp.SaleItemInput, len(order.Items))
	for i, it := range order.Items {
		items[i] = salesapp.SaleItemInput{ProductID: it.ProductID, SoldBy: string(it.SoldBy), Quantity: it.Quantity}
	}
	clientID := order.ClientID

	sale, err := s.builder.Build(ctx, salesapp.BuildSpec{
		SellerID: actor.ID,
		ClientID: &clientID,
		Items:    items,
		AfterCreate: func(ctx context.Context, repos inventoryapp.TransactionalRepositories, sale *sales.Sale) error {
			converted := *order
			if err := converted.MarkConverted(sale.ID); err != nil {
				return err
			}
			return repos.OrderRepo().Update(ctx, &converted)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order converted to sale",
		zap.String("order_id", order.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
	)
	resp := salesapp.ToSaleResponse(sale)
	return &resp, nil
}

func (s *OrderService) find(ctx context.Context, actor identity.Actor, id uuid.UUID) (*partner.Order, error) {
	order, err := s.orderRepo.FindScoped(ctx, id, actor.OrderScope())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("order", id)
		}
		return nil, err
	}
	return order, nil
}
