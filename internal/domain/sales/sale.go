package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/pricing"
	"github.com/stockroute/backend/internal/domain/shared"
)

// LineItem is one priced line of a sale or of its returns
type LineItem struct {
	ProductID       uuid.UUID
	SoldBy          SoldBy
	Quantity        int64
	DiscountPercent decimal.Decimal
	UnitPrice       decimal.Decimal
	Total           decimal.Decimal
}

// NewLineItem builds a line from a pricing result
func NewLineItem(productID uuid.UUID, soldBy SoldBy, quantity int64, priced pricing.Result) (LineItem, error) {
	if productID == uuid.Nil {
		return LineItem{}, shared.NewValidationError("line item requires a product")
	}
	if !soldBy.IsValid() {
		return LineItem{}, shared.NewValidationError("invalid soldBy %q", soldBy)
	}
	if quantity <= 0 {
		return LineItem{}, shared.NewValidationError("line quantity must be positive, got %d", quantity)
	}
	return LineItem{
		ProductID:       productID,
		SoldBy:          soldBy,
		Quantity:        quantity,
		DiscountPercent: priced.DiscountPercent,
		UnitPrice:       priced.UnitPrice,
		Total:           priced.LineTotal,
	}, nil
}

// ReturnRecord holds the itemized returns of a sale
type ReturnRecord struct {
	Items []LineItem
	Total decimal.Decimal
}

// Sale is the aggregate root for a completed sale.
// NetAmount = TotalAmount - Return.Total - ReturnGlobal and
// AmountPaid <= NetAmount hold after every mutation.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber     string
	Date           time.Time
	ClientID       *uuid.UUID
	SellerID       uuid.UUID
	DeliveryManID  *uuid.UUID
	Instant        bool
	Items          []LineItem
	TotalAmount    decimal.Decimal
	DeliveryStatus DeliveryStatus
	Return         ReturnRecord
	ReturnGlobal   decimal.Decimal
	NetAmount      decimal.Decimal
	PaymentMethod  PaymentMethod
	AmountPaid     decimal.Decimal
	InvoiceURL     *string
}

// NewSaleParams carries what the builder resolved for a new sale
type NewSaleParams struct {
	Number        string
	Date          time.Time
	ClientID      *uuid.UUID
	SellerID      uuid.UUID
	DeliveryManID *uuid.UUID
	Items         []LineItem
	Instant       bool
	PaymentMethod PaymentMethod
}

// NewSale creates a sale. Ordinary sales start ordered and unpaid;
// instant sales are delivered and paid in full at creation.
func NewSale(p NewSaleParams) (*Sale, error) {
	if p.Number == "" {
		return nil, shared.NewValidationError("sale number is required")
	}
	if p.SellerID == uuid.Nil {
		return nil, shared.NewValidationError("sale requires a seller")
	}
	if !p.Instant && p.ClientID == nil {
		return nil, shared.NewValidationError("sale requires a client")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewValidationError("sale must have at least one item")
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Total)
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        p.Number,
		Date:              p.Date,
		ClientID:          p.ClientID,
		SellerID:          p.SellerID,
		DeliveryManID:     p.DeliveryManID,
		Instant:           p.Instant,
		Items:             p.Items,
		TotalAmount:       total,
		DeliveryStatus:    DeliveryOrdered,
		Return:            ReturnRecord{Items: make([]LineItem, 0), Total: decimal.Zero},
		ReturnGlobal:      decimal.Zero,
		NetAmount:         total,
		PaymentMethod:     PaymentCash,
		AmountPaid:        decimal.Zero,
	}

	if p.Instant {
		s.DeliveryStatus = DeliveryDelivered
		s.AmountPaid = total
		if p.PaymentMethod != "" {
			if !p.PaymentMethod.IsValid() {
				return nil, shared.NewValidationError("invalid payment method %q", p.PaymentMethod)
			}
			s.PaymentMethod = p.PaymentMethod
		}
	}

	s.AddDomainEvent(NewSaleCreatedEvent(s))
	return s, nil
}

// SoldQuantity is the total quantity sold of a product across all lines
func (s *Sale) SoldQuantity(productID uuid.UUID) int64 {
	return sumQuantity(s.Items, productID)
}

// ReturnedQuantity is the total quantity of a product already returned
func (s *Sale) ReturnedQuantity(productID uuid.UUID) int64 {
	return sumQuantity(s.Return.Items, productID)
}

// Outstanding is what the client still owes
func (s *Sale) Outstanding() decimal.Decimal {
	return s.NetAmount.Sub(s.AmountPaid)
}

func (s *Sale) linesFor(productID uuid.UUID) []LineItem {
	var out []LineItem
	for _, item := range s.Items {
		if item.ProductID == productID {
			out = append(out, item)
		}
	}
	return out
}

func sumQuantity(items []LineItem, productID uuid.UUID) int64 {
	var n int64
	for _, item := range items {
		if item.ProductID == productID {
			n += item.Quantity
		}
	}
	return n
}

func sumTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}
