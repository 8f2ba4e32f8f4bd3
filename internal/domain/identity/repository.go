package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role     *Role
	SellerID *uuid.UUID
}

// UserRepository persists users and their sector memberships
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	Create(ctx context.Context, user *User) error
}
