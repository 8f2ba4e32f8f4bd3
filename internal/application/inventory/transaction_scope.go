package inventory

import (
	"context"

	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/inventory"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories that
// stock-moving operations touch.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one underlying database transaction.
//
// BatchRepo and StockRepo are the only way stock columns change; ProductRepo
// never writes them.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	BatchRepo() inventory.BatchRepository
	StockRepo() inventory.StockRepository
	SaleRepo() sales.Repository
	SequenceRepo() sales.SequenceRepository
	ClientRepo() partner.ClientRepository
	OrderRepo() partner.OrderRepository
}

// Repositories is a plain set of repositories, used by NoOpTransactionScope
type Repositories struct {
	Products  catalog.ProductRepository
	Batches   inventory.BatchRepository
	Stock     inventory.StockRepository
	Sales     sales.Repository
	Sequences sales.SequenceRepository
	Clients   partner.ClientRepository
	Orders    partner.OrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.repos.Products
}

func (s *NoOpTransactionScope) BatchRepo() inventory.BatchRepository {
	return s.repos.Batches
}

func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository {
	return s.repos.Stock
}

func (s *NoOpTransactionScope) SaleRepo() sales.Repository {
	return s.repos.Sales
}

func (s *NoOpTransactionScope) SequenceRepo() sales.SequenceRepository {
	return s.repos.Sequences
}

func (s *NoOpTransactionScope) ClientRepo() partner.ClientRepository {
	return s.repos.Clients
}

func (s *NoOpTransactionScope) OrderRepo() partner.OrderRepository {
	return s.repos.Orders
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
