package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	Scope    identity.Scope
	SectorID *uuid.UUID
	CityID   *uuid.UUID
	Search   string
	shared.Pagination
}

// ClientRepository persists clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindScoped finds a client visible under scope, ErrNotFound otherwise
	FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*Client, error)

	List(ctx context.Context, filter ClientFilter) ([]Client, int64, error)

	// ExistsByNameKey checks the case-insensitive name among a seller's clients
	ExistsByNameKey(ctx context.Context, sellerID uuid.UUID, key string) (bool, error)

	ExistsByNumber(ctx context.Context, number string) (bool, error)

	Create(ctx context.Context, client *Client) error

	// IncrementOrders atomically bumps numberOfOrders
	IncrementOrders(ctx context.Context, id uuid.UUID, by int64) error
}

// OrderFilter narrows order listings. The date bounds apply to WantedDate;
// Until is exclusive.
type OrderFilter struct {
	Scope    identity.Scope
	Status   *OrderStatus
	ClientID *uuid.UUID
	From     *time.Time
	Until    *time.Time
	shared.Pagination
}

// OrderRepository persists orders
type OrderRepository interface {
	FindScoped(ctx context.Context, id uuid.UUID, scope identity.Scope) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	Create(ctx context.Context, order *Order) error

	// Update replaces items, wanted date, status and sale link
	Update(ctx context.Context, order *Order) error

	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteCreatedBefore removes orders older than cutoff
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
