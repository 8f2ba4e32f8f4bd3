package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
)

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name           string     `json:"name" binding:"required,min=1,max=200"`
	Location       string     `json:"location" binding:"required"`
	TypeOfBusiness string     `json:"type_of_business" binding:"required"`
	PhoneNumber    string     `json:"phone_number" binding:"required"`
	PictureURL     string     `json:"picture_url" binding:"omitempty,url"`
	SectorID       uuid.UUID  `json:"sector_id" binding:"required"`
	DeliveryManID  *uuid.UUID `json:"delivery_man_id"`
}

// ClientListRequest filters client listings
type ClientListRequest struct {
	SectorID *uuid.UUID `form:"-"` // sector_id query parameter, parsed by the handler
	CityID   *uuid.UUID `form:"-"` // city_id query parameter, parsed by the handler
	Search   string     `form:"search"`
	Page     int        `form:"page"`
	Limit    int        `form:"limit"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID             uuid.UUID  `json:"id"`
	ClientNumber   string     `json:"client_number"`
	Name           string     `json:"name"`
	Location       string     `json:"location"`
	TypeOfBusiness string     `json:"type_of_business"`
	PhoneNumber    string     `json:"phone_number"`
	PictureURL     string     `json:"picture_url"`
	CityID         uuid.UUID  `json:"city_id"`
	SectorID       *uuid.UUID `json:"sector_id,omitempty"`
	SellerID       uuid.UUID  `json:"seller_id"`
	DeliveryManID  *uuid.UUID `json:"delivery_man_id,omitempty"`
	NumberOfOrders int64      `json:"number_of_orders"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:             c.ID,
		ClientNumber:   c.ClientNumber,
		Name:           c.Name,
		Location:       c.Location,
		TypeOfBusiness: c.TypeOfBusiness,
		PhoneNumber:    c.PhoneNumber,
		PictureURL:     c.PictureURL,
		CityID:         c.CityID,
		SectorID:       c.SectorID,
		SellerID:       c.SellerID,
		DeliveryManID:  c.DeliveryManID,
		NumberOfOrders: c.NumberOfOrders,
		CreatedAt:      c.CreatedAt,
	}
}

// OrderItemInput is a requested order line
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	SoldBy    string    `json:"sold_by" binding:"required,soldby"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

func toOrderItems(in []OrderItemInput) []partner.OrderItem {
	out := make([]partner.OrderItem, len(in))
	for i, it := range in {
		out[i] = partner.OrderItem{ProductID: it.ProductID, SoldBy: sales.SoldBy(it.SoldBy), Quantity: it.Quantity}
	}
	return out
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClientID   uuid.UUID        `json:"client_id" binding:"required"`
	Items      []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	WantedDate time.Time        `json:"wanted_date" binding:"required"`
}

// UpdateOrderRequest changes an order. Sellers may only send Status.
type UpdateOrderRequest struct {
	Items      []OrderItemInput `json:"items" binding:"omitempty,dive"`
	WantedDate *time.Time       `json:"wanted_date"`
	Status     *string          `json:"status"`
}

// OrderListRequest filters order listings
type OrderListRequest struct {
	Status   string           `form:"status"`
	ClientID *uuid.UUID       `form:"-"` // client_id query parameter, parsed by the handler
	From     shared.QueryTime `form:"from"`
	To       shared.QueryTime `form:"to"`
	Page     int              `form:"page"`
	Limit    int              `form:"limit"`
}

// OrderItemResponse is an order line in API responses
type OrderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	SoldBy    string    `json:"sold_by"`
	Quantity  int64     `json:"quantity"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	DeliveryManID uuid.UUID           `json:"delivery_man_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	Items         []OrderItemResponse `json:"items"`
	WantedDate    time.Time           `json:"wanted_date"`
	Status        string              `json:"status"`
	SaleID        *uuid.UUID          `json:"sale_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *partner.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{ProductID: it.ProductID, SoldBy: string(it.SoldBy), Quantity: it.Quantity}
	}
	return OrderResponse{
		ID:            o.ID,
		DeliveryManID: o.DeliveryManID,
		SellerID:      o.SellerID,
		ClientID:      o.ClientID,
		Items:         items,
		WantedDate:    o.WantedDate,
		Status:        string(o.Status),
		SaleID:        o.SaleID,
		CreatedAt:     o.CreatedAt,
	}
}
