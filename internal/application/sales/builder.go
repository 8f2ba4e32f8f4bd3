package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/pricing"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SaleMetrics counts committed sales and the stock they consumed.
type SaleMetrics interface {
	inventoryapp.StockMetrics
	RecordSaleCreated(ctx context.Context, instant bool, total decimal.Decimal)
}

// SaleBuilder creates sales. Stock consumption, sequence allocation and
// the sale insert share one transaction, retried as a whole when a
// conditional stock update loses a race.
type SaleBuilder struct {
	txScope     inventoryapp.TransactionScope
	publisher   shared.EventPublisher
	metrics     SaleMetrics
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// NewSaleBuilder creates a new SaleBuilder
func NewSaleBuilder(txScope inventoryapp.TransactionScope, maxAttempts int, logger *zap.Logger) *SaleBuilder {
	return &SaleBuilder{
		txScope:     txScope,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher used after commit
func (b *SaleBuilder) SetEventPublisher(publisher shared.EventPublisher) {
	b.publisher = publisher
}

// SetBusinessMetrics sets where committed sales are counted
func (b *SaleBuilder) SetBusinessMetrics(m SaleMetrics) {
	b.metrics = m
}

// BuildSpec is everything needed to build one sale
type BuildSpec struct {
	SellerID      uuid.UUID
	ClientID      *uuid.UUID
	Items         []SaleItemInput
	Date          *time.Time
	Instant       bool
	PaymentMethod sales.PaymentMethod

	// AfterCreate runs inside the sale's transaction once the sale row exists
	AfterCreate func(ctx context.Context, repos inventoryapp.TransactionalRepositories, sale *sales.Sale) error
}

// Create builds a client-bound sale for a seller
func (b *SaleBuilder) Create(ctx context.Context, actor identity.Actor, req CreateSaleRequest) (*SaleResponse, error) {
	if actor.Role != identity.RoleSeller {
		return nil, shared.ErrForbidden
	}
	clientID := req.ClientID
	sale, err := b.Build(ctx, BuildSpec{
		SellerID: actor.ID,
		ClientID: &clientID,
		Items:    req.Items,
		Date:     req.Date,
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// CreateInstant builds an anonymous sale that is delivered and paid at once
func (b *SaleBuilder) CreateInstant(ctx context.Context, actor identity.Actor, req InstantSaleRequest) (*SaleResponse, error) {
	if actor.Role != identity.RoleInstant {
		return nil, shared.ErrForbidden
	}
	sale, err := b.Build(ctx, BuildSpec{
		SellerID:      actor.ID,
		Items:         req.Items,
		Date:          req.Date,
		Instant:       true,
		PaymentMethod: sales.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Build runs the whole sale creation and publishes SaleCreated after commit
func (b *SaleBuilder) Build(ctx context.Context, spec BuildSpec) (*sales.Sale, error) {
	if len(spec.Items) == 0 {
		return nil, shared.NewValidationError("sale must have at least one item")
	}
	if !spec.Instant && spec.ClientID == nil {
		return nil, shared.NewValidationError("sale requires a client")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "build")
	defer span.End()

	var (
		sale  *sales.Sale
		moves []inventoryapp.Movement
	)
	err := inventoryapp.RetryOnStockRace(ctx, b.maxAttempts, b.logger, func(ctx context.Context) error {
		return b.txScope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
			s, m, err := b.buildInTx(ctx, repos, spec)
			if err != nil {
				return err
			}
			sale, moves = s, m
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if b.metrics != nil {
		b.metrics.RecordSaleCreated(ctx, sale.Instant, sale.TotalAmount)
		inventoryapp.ReportMovements(ctx, b.metrics, moves)
	}

	b.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("seller_id", sale.SellerID.String()),
		zap.String("total", sale.TotalAmount.String()),
	)
	b.publishEvents(ctx, sale)
	return sale, nil
}

func (b *SaleBuilder) buildInTx(ctx context.Context, repos inventoryapp.TransactionalRepositories, spec BuildSpec) (*sales.Sale, []inventoryapp.Movement, error) {
	var deliveryManID *uuid.UUID
	if spec.ClientID != nil {
		client, err := repos.ClientRepo().FindScoped(ctx, *spec.ClientID, identity.SellerScope(spec.SellerID))
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil, shared.NewNotFoundError("client", *spec.ClientID)
			}
			return nil, nil, err
		}
		if client.DeliveryManID == nil {
			return nil, nil, shared.NewValidationError("client %s has no delivery man assigned", client.ID)
		}
		deliveryManID = client.DeliveryManID
	}

	products, err := b.loadProducts(ctx, repos, spec.Items)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]sales.LineItem, 0, len(spec.Items))
	for _, it := range spec.Items {
		product := products[it.ProductID]
		if !product.HasStock(it.Quantity) {
			return nil, nil, shared.NewInsufficientStockError(product.ID, it.Quantity, product.CurrentStock)
		}
		var priced pricing.Result
		if spec.Instant {
			priced = pricing.NoDiscount(product.PricingTerms(), it.Quantity)
		} else {
			priced = pricing.Price(product.PricingTerms(), it.Quantity)
		}
		line, err := sales.NewLineItem(product.ID, sales.SoldBy(it.SoldBy), it.Quantity, priced)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
	}

	ledger := inventoryapp.LedgerFor(repos, b.logger)
	for _, line := range lines {
		if _, err := ledger.Consume(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, nil, err
		}
	}

	now := b.now()
	day := sales.SaleDay(now)
	seq, err := repos.SequenceRepo().NextValue(ctx, day)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate sale number: %w", err)
	}

	date := now
	if spec.Date != nil && !spec.Date.IsZero() {
		date = *spec.Date
	}
	sale, err := sales.NewSale(sales.NewSaleParams{
		Number:        sales.FormatSaleNumber(day, seq),
		Date:          date,
		ClientID:      spec.ClientID,
		SellerID:      spec.SellerID,
		DeliveryManID: deliveryManID,
		Items:         lines,
		Instant:       spec.Instant,
		PaymentMethod: spec.PaymentMethod,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := repos.SaleRepo().Create(ctx, sale); err != nil {
		return nil, nil, err
	}

	if spec.AfterCreate != nil {
		if err := spec.AfterCreate(ctx, repos, sale); err != nil {
			return nil, nil, err
		}
	}
	return sale, ledger.Movements(), nil
}

// loadProducts bulk-fetches the referenced products; any missing id
// fails the whole sale
func (b *SaleBuilder) loadProducts(ctx context.Context, repos inventoryapp.TransactionalRepositories, items []SaleItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	found, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewNotFoundError("product", id)
		}
	}
	return byID, nil
}

// publishEvents hands the sale's events to the bus. The sale is already
// committed, so failures are only logged.
func (b *SaleBuilder) publishEvents(ctx context.Context, sale *sales.Sale) {
	events := sale.PullDomainEvents()
	if b.publisher == nil || len(events) == 0 {
		return
	}
	if err := b.publisher.Publish(ctx, events...); err != nil {
		b.logger.Error("failed to publish sale events",
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
	}
}
