package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// BatchMovement is the quantity taken from, or returned to, one batch
type BatchMovement struct {
	BatchID  uuid.UUID
	Quantity int64
}

// ConsumptionPlan lists the takes, soonest expiry first, that cover a request.
// Unbatched is the part drawn from counter stock no batch accounts for,
// taken only once every batch is empty.
type ConsumptionPlan struct {
	ProductID uuid.UUID
	Requested int64
	Takes     []BatchMovement
	Unbatched int64
}

// ReplenishmentPlan lists the returns, latest expiry first. Overflow is the
// part of the request no batch had capacity for; it still counts toward
// the product's stock.
type ReplenishmentPlan struct {
	ProductID uuid.UUID
	Requested int64
	Returns   []BatchMovement
	Overflow  int64
}

// SortByExpiryAsc orders batches soonest-expiring first. Ties fall back to
// supply date and then creation time so the order is deterministic.
func SortByExpiryAsc(batches []SupplyBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return lessByExpiry(&batches[i], &batches[j])
	})
}

// SortByExpiryDesc orders batches latest-expiring first
func SortByExpiryDesc(batches []SupplyBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return lessByExpiry(&batches[j], &batches[i])
	})
}

func lessByExpiry(a, b *SupplyBatch) bool {
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.Before(b.ExpiryDate)
	}
	if !a.SupplyDate.Equal(b.SupplyDate) {
		return a.SupplyDate.Before(b.SupplyDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// PlanConsumption greedily takes min(remaining, still needed) from each
// batch in ascending expiry order. It fails with InsufficientStockError when
// the batches together cannot cover quantity; the input is not modified.
func PlanConsumption(productID uuid.UUID, quantity int64, batches []SupplyBatch) (*ConsumptionPlan, error) {
	return PlanCounterConsumption(productID, quantity, batches, 0)
}

// PlanCounterConsumption is PlanConsumption against the product counter.
// Stock in currentStock beyond the batches' remaining total, left by
// replenish overflow or adjustments without an expiry, covers whatever the
// batches cannot.
func PlanCounterConsumption(productID uuid.UUID, quantity int64, batches []SupplyBatch, currentStock int64) (*ConsumptionPlan, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity to consume must be positive, got %d", quantity)
	}

	sorted := make([]SupplyBatch, 0, len(batches))
	var batched int64
	for _, b := range batches {
		if b.RemainingQty > 0 {
			sorted = append(sorted, b)
			batched += b.RemainingQty
		}
	}
	unbatched := max(currentStock-batched, 0)
	if batched+unbatched < quantity {
		return nil, shared.NewInsufficientStockError(productID, quantity, batched+unbatched)
	}
	SortByExpiryAsc(sorted)

	plan := &ConsumptionPlan{ProductID: productID, Requested: quantity}
	needed := quantity
	for _, b := range sorted {
		if needed == 0 {
			break
		}
		take := min(b.RemainingQty, needed)
		plan.Takes = append(plan.Takes, BatchMovement{BatchID: b.ID, Quantity: take})
		needed -= take
	}
	plan.Unbatched = needed
	return plan, nil
}

// PlanReplenishment returns quantity to batches in descending expiry order,
// filling each up to its original quantity.
func PlanReplenishment(productID uuid.UUID, quantity int64, batches []SupplyBatch) (*ReplenishmentPlan, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity to replenish must be positive, got %d", quantity)
	}

	sorted := make([]SupplyBatch, len(batches))
	copy(sorted, batches)
	SortByExpiryDesc(sorted)

	plan := &ReplenishmentPlan{ProductID: productID, Requested: quantity}
	left := quantity
	for _, b := range sorted {
		if left == 0 {
			break
		}
		capacity := b.Capacity()
		if capacity <= 0 {
			continue
		}
		put := min(capacity, left)
		plan.Returns = append(plan.Returns, BatchMovement{BatchID: b.ID, Quantity: put})
		left -= put
	}
	plan.Overflow = left
	return plan, nil
}

// NextExpiry returns the soonest expiry among batches that still hold stock
func NextExpiry(batches []SupplyBatch) *SupplyBatch {
	var next *SupplyBatch
	for i := range batches {
		b := &batches[i]
		if b.RemainingQty <= 0 {
			continue
		}
		if next == nil || b.ExpiryDate.Before(next.ExpiryDate) {
			next = b
		}
	}
	return next
}
