package persistence

import (
	"context"

	appgeo "github.com/stockroute/backend/internal/application/geo"
	appinv "github.com/stockroute/backend/internal/application/inventory"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockRepo() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() sales.Repository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) SequenceRepo() sales.SequenceRepository {
	return NewGormSaleSequenceRepository(r.tx)
}

func (r *gormTransactionalRepositories) ClientRepo() partner.ClientRepository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() partner.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// GormGeoTransactionScope runs geo cascades in a transaction
type GormGeoTransactionScope struct {
	db *gorm.DB
}

// NewGormGeoTransactionScope creates a new GormGeoTransactionScope
func NewGormGeoTransactionScope(db *gorm.DB) *GormGeoTransactionScope {
	return &GormGeoTransactionScope{db: db}
}

// Execute runs fn with a geo repository bound to one transaction
func (s *GormGeoTransactionScope) Execute(ctx context.Context, fn func(repo geo.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormGeoRepository(tx))
	})
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appgeo.TransactionScope          = (*GormGeoTransactionScope)(nil)
)
