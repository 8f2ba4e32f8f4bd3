// Package pricing computes per-line discounts and prices. Everything here
// is a pure function of its inputs.
package pricing

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for amounts
const MoneyScale = 4

var (
	hundred = decimal.NewFromInt(100)
)

// Rule names reported in Result.AppliedRules
const (
	RuleVolume     = "volume_discount"
	RuleGlobal     = "global_discount"
	RuleClamped    = "discount_clamped"
	RuleNoDiscount = "no_discount"
)

// DiscountRule is a tiered volume discount: Percent applies once the
// line quantity reaches MinQty.
type DiscountRule struct {
	MinQty  int64           `json:"min_qty"`
	Percent decimal.Decimal `json:"percent"`
}

// Terms are the pricing attributes of a product
type Terms struct {
	UnitPrice             decimal.Decimal
	Rule                  *DiscountRule
	GlobalDiscountPercent *decimal.Decimal
}

// Result is the priced line
type Result struct {
	DiscountPercent decimal.Decimal
	UnitPrice       decimal.Decimal
	LineTotal       decimal.Decimal
	AppliedRules    []string
}

// Price stacks the volume discount and the global discount additively
// and applies the sum to the unit price. The effective percent is clamped
// to [0, 100] so a misconfigured product can never produce a negative price.
func Price(terms Terms, quantity int64) Result {
	discount := decimal.Zero
	rules := make([]string, 0, 2)

	if terms.Rule != nil && quantity >= terms.Rule.MinQty {
		discount = discount.Add(terms.Rule.Percent)
		rules = append(rules, RuleVolume)
	}
	if terms.GlobalDiscountPercent != nil && !terms.GlobalDiscountPercent.IsZero() {
		discount = discount.Add(*terms.GlobalDiscountPercent)
		rules = append(rules, RuleGlobal)
	}

	if discount.GreaterThan(hundred) {
		discount = hundred
		rules = append(rules, RuleClamped)
	} else if discount.IsNegative() {
		discount = decimal.Zero
		rules = append(rules, RuleClamped)
	}

	return compute(terms.UnitPrice, discount, quantity, rules)
}

// NoDiscount prices a line at the plain unit price. Instant sales use it.
func NoDiscount(terms Terms, quantity int64) Result {
	return compute(terms.UnitPrice, decimal.Zero, quantity, []string{RuleNoDiscount})
}

func compute(base, discount decimal.Decimal, quantity int64, rules []string) Result {
	factor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	unit := base.Mul(factor).Round(MoneyScale)
	return Result{
		DiscountPercent: discount,
		UnitPrice:       unit,
		LineTotal:       unit.Mul(decimal.NewFromInt(quantity)),
		AppliedRules:    rules,
	}
}

// ValidatePercent reports whether p is an acceptable discount percent.
func ValidatePercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
