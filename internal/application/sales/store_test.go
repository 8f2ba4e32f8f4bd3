package sales

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/pricing"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
)

// world is an in-memory backing store shared by the fake repositories.
// Conditional updates behave like the SQL ones.
type world struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*catalog.Product
	batches   map[uuid.UUID]*inventory.SupplyBatch
	clients   map[uuid.UUID]*partner.Client
	sales     map[uuid.UUID]*sales.Sale
	sequences map[time.Time]int64
	failOnce  map[uuid.UUID]bool
	amounts   sales.Amounts
	byStatus  map[sales.DeliveryStatus]int64
	lastStats sales.StatsFilter
}

func newWorld() *world {
	return &world{
		products:  make(map[uuid.UUID]*catalog.Product),
		batches:   make(map[uuid.UUID]*inventory.SupplyBatch),
		clients:   make(map[uuid.UUID]*partner.Client),
		sales:     make(map[uuid.UUID]*sales.Sale),
		sequences: make(map[time.Time]int64),
		failOnce:  make(map[uuid.UUID]bool),
	}
}

func (w *world) scope() *inventoryapp.NoOpTransactionScope {
	return inventoryapp.NewNoOpTransactionScope(inventoryapp.Repositories{
		Products:  fakeProducts{w},
		Batches:   fakeStock{w},
		Stock:     fakeStock{w},
		Sales:     fakeSales{w},
		Sequences: fakeSequences{w},
		Clients:   fakeClients{w},
	})
}

func (w *world) addProduct(price int64, rule *pricing.DiscountRule, global *decimal.Decimal) *catalog.Product {
	p, err := catalog.NewProduct(uuid.New(), "product-"+uuid.NewString()[:8], decimal.NewFromInt(price))
	if err != nil {
		panic(err)
	}
	p.DiscountRule = rule
	p.GlobalDiscountPercent = global
	w.products[p.ID] = p
	return p
}

func (w *world) addBatch(productID uuid.UUID, qty int64, expiry time.Time) *inventory.SupplyBatch {
	b, err := inventory.NewSupplyBatch(productID, qty, expiry, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	w.batches[b.ID] = b
	w.products[productID].CurrentStock += qty
	return b
}

func (w *world) addClient(sellerID uuid.UUID, deliveryManID *uuid.UUID) *partner.Client {
	c, err := partner.NewClient(partner.NewClientParams{
		Name:           "Hanout " + uuid.NewString()[:6],
		Location:       "Rue 12",
		TypeOfBusiness: "grocery",
		PhoneNumber:    "+212612345678",
		CityID:         uuid.New(),
		SectorID:       uuid.New(),
		SellerID:       sellerID,
		DeliveryManID:  deliveryManID,
	})
	if err != nil {
		panic(err)
	}
	w.clients[c.ID] = c
	return c
}

func (w *world) stockOf(productID uuid.UUID) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.products[productID].CurrentStock
}

func (w *world) remaining(batchID uuid.UUID) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches[batchID].RemainingQty
}

type fakeProducts struct{ w *world }

func (f fakeProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	p, ok := f.w.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakeProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := f.w.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakeProducts) List(context.Context, catalog.ProductFilter) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}

func (f fakeProducts) FindBelowStock(context.Context, int64) ([]catalog.Product, error) {
	return nil, nil
}

func (f fakeProducts) FindExpiringBefore(context.Context, time.Time, int64) ([]catalog.Product, error) {
	return nil, nil
}

func (f fakeProducts) Create(context.Context, *catalog.Product) error { return nil }
func (f fakeProducts) Update(context.Context, *catalog.Product) error { return nil }
func (f fakeProducts) Delete(context.Context, uuid.UUID) error { return nil }

type fakeStock struct{ w *world }

func (f fakeStock) FindByProduct(_ context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []inventory.SupplyBatch
	for _, b := range f.w.batches {
		if b.ProductID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f fakeStock) FindConsumable(ctx context.Context, productID uuid.UUID) ([]inventory.SupplyBatch, error) {
	all, _ := f.FindByProduct(ctx, productID)
	var out []inventory.SupplyBatch
	for _, b := range all {
		if b.RemainingQty > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeStock) Create(_ context.Context, batch *inventory.SupplyBatch) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	cp := *batch
	f.w.batches[batch.ID] = &cp
	return nil
}

func (f fakeStock) DecrementIfAvailable(_ context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.failOnce[batchID] {
		delete(f.w.failOnce, batchID)
		return false, nil
	}
	b := f.w.batches[batchID]
	if b == nil || b.RemainingQty < qty {
		return false, nil
	}
	b.RemainingQty -= qty
	return true, nil
}

func (f fakeStock) IncrementIfCapacity(_ context.Context, batchID uuid.UUID, qty int64) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	b := f.w.batches[batchID]
	if b == nil || b.RemainingQty+qty > b.Quantity {
		return false, nil
	}
	b.RemainingQty += qty
	return true, nil
}

func (f fakeStock) DeleteExhaustedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f fakeStock) DecrementStock(_ context.Context, productID uuid.UUID, qty int64) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	p := f.w.products[productID]
	if p.CurrentStock < qty {
		return false, nil
	}
	p.CurrentStock -= qty
	return true, nil
}

func (f fakeStock) IncrementStock(_ context.Context, productID uuid.UUID, qty int64) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.products[productID].CurrentStock += qty
	return nil
}

func (f fakeStock) SetNextExpiry(_ context.Context, productID uuid.UUID, expiry *time.Time) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.products[productID].NextExpiryDate = expiry
	return nil
}

func (f fakeStock) CurrentStock(_ context.Context, productID uuid.UUID) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return f.w.products[productID].CurrentStock, nil
}

type fakeClients struct{ w *world }

func (f fakeClients) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return f.FindScoped(ctx, id, identity.Unrestricted())
}

func (f fakeClients) FindScoped(_ context.Context, id uuid.UUID, scope identity.Scope) (*partner.Client, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.clients[id]
	if !ok || !scope.Allows(c.SellerID, c.DeliveryManID) {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeClients) List(context.Context, partner.ClientFilter) ([]partner.Client, int64, error) {
	return nil, 0, nil
}

func (f fakeClients) ExistsByNameKey(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (f fakeClients) ExistsByNumber(context.Context, string) (bool, error) { return false, nil }
func (f fakeClients) Create(context.Context, *partner.Client) error { return nil }

func (f fakeClients) IncrementOrders(_ context.Context, id uuid.UUID, by int64) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if c, ok := f.w.clients[id]; ok {
		c.NumberOfOrders += by
	}
	return nil
}

type fakeSales struct{ w *world }

func (f fakeSales) Create(_ context.Context, sale *sales.Sale) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	cp := *sale
	f.w.sales[sale.ID] = &cp
	return nil
}

func (f fakeSales) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return f.FindScoped(ctx, id, identity.Unrestricted())
}

func (f fakeSales) FindScoped(_ context.Context, id uuid.UUID, scope identity.Scope) (*sales.Sale, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	s, ok := f.w.sales[id]
	if !ok || !scope.Allows(s.SellerID, s.DeliveryManID) {
		return nil, shared.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f fakeSales) List(context.Context, sales.ListFilter) ([]sales.Sale, int64, error) {
	return nil, 0, nil
}

func (f fakeSales) ListForExport(_ context.Context, filter sales.StatsFilter) ([]sales.Sale, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []sales.Sale
	for _, s := range f.w.sales {
		if filter.Scope.Allows(s.SellerID, s.DeliveryManID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f fakeSales) UpdateSettlement(_ context.Context, sale *sales.Sale, expectedVersion int) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	stored, ok := f.w.sales[sale.ID]
	if !ok || stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	cp := *sale
	f.w.sales[sale.ID] = &cp
	return nil
}

func (f fakeSales) SetInvoiceURL(_ context.Context, id uuid.UUID, url string) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	s, ok := f.w.sales[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.InvoiceURL = &url
	return nil
}

func (f fakeSales) SumDelivered(_ context.Context, filter sales.StatsFilter) (sales.Amounts, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.lastStats = filter
	return f.w.amounts, nil
}

func (f fakeSales) CountByStatus(context.Context, sales.StatsFilter) (map[sales.DeliveryStatus]int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return f.w.byStatus, nil
}

type fakeSequences struct{ w *world }

func (f fakeSequences) NextValue(_ context.Context, day time.Time) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.sequences[day]++
	return f.w.sequences[day], nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}
