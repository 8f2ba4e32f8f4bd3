package sales

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/pricing"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ReturnLine asks to take back quantity of a sold product
type ReturnLine struct {
	ProductID uuid.UUID
	SoldBy    SoldBy
	Quantity  int64
}

// Settlement is a partial update of a sale. Every field is optional.
type Settlement struct {
	DeliveryStatus   *DeliveryStatus
	ReturnItems      []ReturnLine
	ReturnGlobal     *decimal.Decimal
	PaymentMethod    *PaymentMethod
	PaymentIncrement *decimal.Decimal
}

// IsEmpty reports whether the settlement changes nothing
func (r Settlement) IsEmpty() bool {
	return r.DeliveryStatus == nil && len(r.ReturnItems) == 0 && r.ReturnGlobal == nil &&
		r.PaymentMethod == nil && r.PaymentIncrement == nil
}

// SettlementOutcome describes what ApplySettlement changed
type SettlementOutcome struct {
	PreviousStatus DeliveryStatus
	// TransitionModelled is false when the status change is outside the
	// modelled graph. Such changes are applied anyway.
	TransitionModelled bool
	// Returned are the newly accepted return lines; each must be
	// replenished into the batch ledger.
	Returned []LineItem
}

// ApplySettlement validates and applies a settlement. Returns are
// cumulative: each call appends to the existing return record and is
// capped by sold minus already returned quantity per product. On error
// the sale is left untouched.
func (s *Sale) ApplySettlement(req Settlement) (*SettlementOutcome, error) {
	out := &SettlementOutcome{PreviousStatus: s.DeliveryStatus, TransitionModelled: true}

	status := s.DeliveryStatus
	if req.DeliveryStatus != nil {
		if !req.DeliveryStatus.IsValid() {
			return nil, shared.NewValidationError("invalid delivery status %q", *req.DeliveryStatus)
		}
		out.TransitionModelled = status.CanTransitionTo(*req.DeliveryStatus)
		status = *req.DeliveryStatus
	}

	returnItems := s.Return.Items
	returnTotal := s.Return.Total
	if len(req.ReturnItems) > 0 {
		if status != DeliveryDelivered {
			return nil, shared.NewInvalidStateError("returns are only accepted on delivered sales, sale %s is %s", s.SaleNumber, status)
		}
		accepted, err := s.priceReturns(req.ReturnItems)
		if err != nil {
			return nil, err
		}
		returnItems = append(slices.Clone(s.Return.Items), accepted...)
		returnTotal = sumTotals(returnItems)
		out.Returned = accepted
	}

	returnGlobal := s.ReturnGlobal
	if req.ReturnGlobal != nil {
		if req.ReturnGlobal.IsNegative() {
			return nil, shared.NewValidationError("returnGlobal cannot be negative")
		}
		returnGlobal = req.ReturnGlobal.Round(pricing.MoneyScale)
	}

	method := s.PaymentMethod
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.IsValid() {
			return nil, shared.NewValidationError("invalid payment method %q", *req.PaymentMethod)
		}
		method = *req.PaymentMethod
	}

	paid := s.AmountPaid
	if req.PaymentIncrement != nil {
		if !req.PaymentIncrement.IsPositive() {
			return nil, shared.NewValidationError("payment increment must be positive")
		}
		paid = paid.Add(req.PaymentIncrement.Round(pricing.MoneyScale))
	}

	net := s.TotalAmount.Sub(returnTotal).Sub(returnGlobal)
	if net.IsNegative() {
		return nil, shared.NewValidationError("returns of %s exceed the sale total %s", returnTotal.Add(returnGlobal), s.TotalAmount)
	}
	if paid.GreaterThan(net) {
		return nil, shared.NewValidationError("amount paid %s would exceed net amount %s", paid, net)
	}

	s.DeliveryStatus = status
	s.Return = ReturnRecord{Items: returnItems, Total: returnTotal}
	s.ReturnGlobal = returnGlobal
	s.PaymentMethod = method
	s.AmountPaid = paid
	s.NetAmount = net
	s.IncrementVersion()
	return out, nil
}

// priceReturns checks each line against the sale and prices it at the
// unit price of the original lines it takes back. Returned units are
// matched to the sale's lines of that product in order, so a product sold
// on several lines at different prices is refunded line by line.
func (s *Sale) priceReturns(lines []ReturnLine) ([]LineItem, error) {
	pending := make(map[uuid.UUID]int64, len(lines))
	accepted := make([]LineItem, 0, len(lines))

	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, shared.NewValidationError("return quantity must be positive, got %d", l.Quantity)
		}
		originals := s.linesFor(l.ProductID)
		if len(originals) == 0 {
			return nil, shared.NewValidationError("product %s is not part of sale %s", l.ProductID, s.SaleNumber)
		}
		taken := s.ReturnedQuantity(l.ProductID) + pending[l.ProductID]
		remaining := s.SoldQuantity(l.ProductID) - taken
		if l.Quantity > remaining {
			return nil, shared.NewValidationError("cannot return %d of product %s, only %d returnable", l.Quantity, l.ProductID, remaining)
		}
		pending[l.ProductID] += l.Quantity

		want := l.Quantity
		for _, original := range originals {
			if want == 0 {
				break
			}
			if taken >= original.Quantity {
				taken -= original.Quantity
				continue
			}
			qty := min(original.Quantity-taken, want)
			taken = 0
			want -= qty

			soldBy := l.SoldBy
			if soldBy == "" {
				soldBy = original.SoldBy
			}
			if !soldBy.IsValid() {
				return nil, shared.NewValidationError("invalid soldBy %q", soldBy)
			}
			accepted = append(accepted, LineItem{
				ProductID:       l.ProductID,
				SoldBy:          soldBy,
				Quantity:        qty,
				DiscountPercent: original.DiscountPercent,
				UnitPrice:       original.UnitPrice,
				Total:           original.UnitPrice.Mul(decimal.NewFromInt(qty)),
			})
		}
	}
	return accepted, nil
}
