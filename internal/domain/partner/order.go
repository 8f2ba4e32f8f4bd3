package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
)

// OrderStatus represents the status of a delivery order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "inProgress"
	OrderDone       OrderStatus = "done"
	OrderCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderDone, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a requested product quantity
type OrderItem struct {
	ProductID uuid.UUID
	SoldBy    sales.SoldBy
	Quantity  int64
}

// Order is a pre-sale request raised by a delivery man for one of his
// clients. It carries no stock or money; converting it goes through the
// sale builder.
type Order struct {
	shared.BaseAggregateRoot
	DeliveryManID uuid.UUID
	SellerID      uuid.UUID
	ClientID      uuid.UUID
	Items         []OrderItem
	WantedDate    time.Time
	Status        OrderStatus
	SaleID        *uuid.UUID
}

// NewOrder creates a pending order. The client must be served by the
// delivery man; the seller is copied from the client.
func NewOrder(deliveryManID uuid.UUID, client *Client, items []OrderItem, wantedDate time.Time) (*Order, error) {
	if client == nil || !client.IsServedBy(deliveryManID) {
		return nil, shared.NewDomainError(shared.CodeNotFound, "client not found or not assigned to this delivery man")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if wantedDate.IsZero() {
		return nil, shared.NewValidationError("wanted date is required")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DeliveryManID:     deliveryManID,
		SellerID:          client.SellerID,
		ClientID:          client.ID,
		Items:             items,
		WantedDate:        wantedDate,
		Status:            OrderPending,
	}, nil
}

// ReplaceItems swaps the requested items
func (o *Order) ReplaceItems(items []OrderItem) error {
	if err := validateItems(items); err != nil {
		return err
	}
	o.Items = items
	o.touch()
	return nil
}

// Reschedule moves the wanted date
func (o *Order) Reschedule(wantedDate time.Time) error {
	if wantedDate.IsZero() {
		return shared.NewValidationError("wanted date is required")
	}
	o.WantedDate = wantedDate
	o.touch()
	return nil
}

// SetStatus sets any valid status
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("invalid order status %q", status)
	}
	o.Status = status
	o.touch()
	return nil
}

// MarkConverted records the sale created from a pending order
func (o *Order) MarkConverted(saleID uuid.UUID) error {
	if o.Status != OrderPending && o.Status != OrderInProgress {
		return shared.NewInvalidStateError("order %s is %s and cannot be converted", o.ID, o.Status)
	}
	o.SaleID = &saleID
	o.Status = OrderDone
	o.touch()
	return nil
}

func (o *Order) touch() {
	o.Touch()
	o.IncrementVersion()
}

func validateItems(items []OrderItem) error {
	if len(items) == 0 {
		return shared.NewValidationError("order must have at least one item")
	}
	for _, it := range items {
		if it.ProductID == uuid.Nil {
			return shared.NewValidationError("order item requires a product")
		}
		if !it.SoldBy.IsValid() {
			return shared.NewValidationError("invalid soldBy %q", it.SoldBy)
		}
		if it.Quantity < 1 {
			return shared.NewValidationError("order item quantity must be at least 1")
		}
	}
	return nil
}
