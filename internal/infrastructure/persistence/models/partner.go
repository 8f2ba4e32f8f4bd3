package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/sales"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	ClientNumber   string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string     `gorm:"type:varchar(200);not null"`
	NameKey        string     `gorm:"type:varchar(200);not null;index:idx_clients_seller_name,priority:2"`
	Location       string     `gorm:"type:varchar(500)"`
	TypeOfBusiness string     `gorm:"type:varchar(100)"`
	PhoneNumber    string     `gorm:"type:varchar(50)"`
	PictureURL     string     `gorm:"type:varchar(500)"`
	CityID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	SectorID       *uuid.UUID `gorm:"type:uuid;index"`
	SellerID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_clients_seller_name,priority:1"`
	DeliveryManID  *uuid.UUID `gorm:"type:uuid;index"`
	NumberOfOrders int64      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientNumber:      m.ClientNumber,
		Name:              m.Name,
		NameKey:           m.NameKey,
		Location:          m.Location,
		TypeOfBusiness:    m.TypeOfBusiness,
		PhoneNumber:       m.PhoneNumber,
		PictureURL:        m.PictureURL,
		CityID:            m.CityID,
		SectorID:          m.SectorID,
		SellerID:          m.SellerID,
		DeliveryManID:     m.DeliveryManID,
		NumberOfOrders:    m.NumberOfOrders,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{
		ClientNumber:   c.ClientNumber,
		Name:           c.Name,
		NameKey:        c.NameKey,
		Location:       c.Location,
		TypeOfBusiness: c.TypeOfBusiness,
		PhoneNumber:    c.PhoneNumber,
		PictureURL:     c.PictureURL,
		CityID:         c.CityID,
		SectorID:       c.SectorID,
		SellerID:       c.SellerID,
		DeliveryManID:  c.DeliveryManID,
		NumberOfOrders: c.NumberOfOrders,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// OrderItemJSON is the stored shape of an order line
type OrderItemJSON struct {
	ProductID uuid.UUID `json:"product_id"`
	SoldBy    string    `json:"sold_by"`
	Quantity  int64     `json:"quantity"`
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	DeliveryManID uuid.UUID           `gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	ClientID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items         string              `gorm:"type:jsonb;not null"`
	WantedDate    time.Time           `gorm:"not null;index"`
	Status        partner.OrderStatus `gorm:"type:varchar(20);not null;index"`
	SaleID        *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() (*partner.Order, error) {
	var stored []OrderItemJSON
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &stored); err != nil {
			return nil, err
		}
	}
	items := make([]partner.OrderItem, len(stored))
	for i, it := range stored {
		items[i] = partner.OrderItem{ProductID: it.ProductID, SoldBy: sales.SoldBy(it.SoldBy), Quantity: it.Quantity}
	}
	return &partner.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		DeliveryManID:     m.DeliveryManID,
		SellerID:          m.SellerID,
		ClientID:          m.ClientID,
		Items:             items,
		WantedDate:        m.WantedDate,
		Status:            m.Status,
		SaleID:            m.SaleID,
	}, nil
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *partner.Order) (*OrderModel, error) {
	stored := make([]OrderItemJSON, len(o.Items))
	for i, it := range o.Items {
		stored[i] = OrderItemJSON{ProductID: it.ProductID, SoldBy: string(it.SoldBy), Quantity: it.Quantity}
	}
	items, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	m := &OrderModel{
		DeliveryManID: o.DeliveryManID,
		SellerID:      o.SellerID,
		ClientID:      o.ClientID,
		Items:         string(items),
		WantedDate:    o.WantedDate,
		Status:        o.Status,
		SaleID:        o.SaleID,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m, nil
}
