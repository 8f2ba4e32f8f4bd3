package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
)

// SaleItemInput is a requested line
type SaleItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	SoldBy    string    `json:"sold_by" binding:"required,soldby"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

// CreateSaleRequest is a client-bound sale by a seller
type CreateSaleRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Items    []SaleItemInput `json:"items" binding:"required,min=1,dive"`
	Date     *time.Time      `json:"date"`
}

// InstantSaleRequest is an anonymous, paid-on-the-spot sale
type InstantSaleRequest struct {
	Items         []SaleItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,paymentmethod"`
	Date          *time.Time      `json:"date"`
}

// ReturnItemInput is a returned line
type ReturnItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	SoldBy    string    `json:"sold_by" binding:"omitempty,soldby"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

// SettlementRequest updates status, returns and payments of a sale. Every
// field is optional; AmountPaid is an increment.
type SettlementRequest struct {
	DeliveryStatus *string           `json:"delivery_status"`
	ReturnItems    []ReturnItemInput `json:"return_items" binding:"omitempty,dive"`
	ReturnGlobal   *decimal.Decimal  `json:"return_global"`
	PaymentMethod  *string           `json:"payment_method" binding:"omitempty,paymentmethod"`
	AmountPaid     *decimal.Decimal  `json:"amount_paid"`
}

func (r SettlementRequest) toDomain() sales.Settlement {
	s := sales.Settlement{
		ReturnGlobal:     r.ReturnGlobal,
		PaymentIncrement: r.AmountPaid,
	}
	if r.DeliveryStatus != nil {
		st := sales.DeliveryStatus(*r.DeliveryStatus)
		s.DeliveryStatus = &st
	}
	if r.PaymentMethod != nil {
		m := sales.PaymentMethod(*r.PaymentMethod)
		s.PaymentMethod = &m
	}
	for _, it := range r.ReturnItems {
		s.ReturnItems = append(s.ReturnItems, sales.ReturnLine{
			ProductID: it.ProductID,
			SoldBy:    sales.SoldBy(it.SoldBy),
			Quantity:  it.Quantity,
		})
	}
	return s
}

// SaleListRequest filters sale listings. From and To are required; each is
// a date or an RFC 3339 timestamp and a bare To date includes that day.
type SaleListRequest struct {
	From     shared.QueryTime `form:"from"`
	To       shared.QueryTime `form:"to"`
	Status   string           `form:"status"`
	ClientID *uuid.UUID       `form:"-"` // client_id query parameter, parsed by the handler
	Page     int              `form:"page"`
	Limit    int              `form:"limit"`
}

// StatsRequest filters the stats summary
type StatsRequest struct {
	From     shared.QueryTime `form:"from"`
	To       shared.QueryTime `form:"to"`
	SellerID *uuid.UUID       `form:"-"` // seller_id query parameter, parsed by the handler
}

// LineItemResponse is a line in API responses
type LineItemResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	SoldBy          string          `json:"sold_by"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Total           decimal.Decimal `json:"total"`
}

// ReturnResponse is the return record in API responses
type ReturnResponse struct {
	ReturnItems []LineItemResponse `json:"return_items"`
	ReturnTotal decimal.Decimal    `json:"return_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	SaleNumber     string             `json:"sale_number"`
	Date           time.Time          `json:"date"`
	ClientID       *uuid.UUID         `json:"client_id,omitempty"`
	SellerID       uuid.UUID          `json:"seller_id"`
	DeliveryManID  *uuid.UUID         `json:"delivery_man_id,omitempty"`
	Items          []LineItemResponse `json:"items"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	DeliveryStatus string             `json:"delivery_status"`
	Return         ReturnResponse     `json:"return"`
	ReturnGlobal   decimal.Decimal    `json:"return_global"`
	NetAmount      decimal.Decimal    `json:"net_amount"`
	PaymentMethod  string             `json:"payment_method"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	InvoiceURL     *string            `json:"invoice_url,omitempty"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		Date:           s.Date,
		ClientID:       s.ClientID,
		SellerID:       s.SellerID,
		DeliveryManID:  s.DeliveryManID,
		Items:          toLineResponses(s.Items),
		TotalAmount:    s.TotalAmount,
		DeliveryStatus: string(s.DeliveryStatus),
		Return: ReturnResponse{
			ReturnItems: toLineResponses(s.Return.Items),
			ReturnTotal: s.Return.Total,
		},
		ReturnGlobal:  s.ReturnGlobal,
		NetAmount:     s.NetAmount,
		PaymentMethod: string(s.PaymentMethod),
		AmountPaid:    s.AmountPaid,
		InvoiceURL:    s.InvoiceURL,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
	}
}

func toLineResponses(items []sales.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, it := range items {
		out[i] = LineItemResponse{
			ProductID:       it.ProductID,
			SoldBy:          string(it.SoldBy),
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			UnitPrice:       it.UnitPrice,
			Total:           it.Total,
		}
	}
	return out
}

// StatsResponse is the aggregate over delivered sales
type StatsResponse struct {
	Revenue     decimal.Decimal  `json:"revenue"`
	Sales       decimal.Decimal  `json:"sales"`
	Returns     decimal.Decimal  `json:"returns"`
	Outstanding decimal.Decimal  `json:"outstanding"`
	Delivered   int64            `json:"delivered"`
	ByStatus    map[string]int64 `json:"by_status"`
}
