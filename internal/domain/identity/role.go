package identity

import (
	"github.com/google/uuid"
)

// Role is the closed set of actor kinds
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleDelivery Role = "delivery"
	RoleInstant  Role = "instant"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleDelivery, RoleInstant:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// SellsDirectly reports whether the role owns sales it creates
func (r Role) SellsDirectly() bool {
	return r == RoleSeller || r == RoleInstant
}

// Actor is the authenticated caller
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates an actor
func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// IsAdmin reports whether the actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Scope is a declarative row filter derived from an actor. A nil field
// means no restriction on that column. Deny matches nothing.
type Scope struct {
	SellerID      *uuid.UUID
	DeliveryManID *uuid.UUID
	Unrestricted  bool
	Deny          bool
}

// Unrestricted returns a scope that matches every row
func Unrestricted() Scope {
	return Scope{Unrestricted: true}
}

// SellerScope restricts rows to one seller
func SellerScope(sellerID uuid.UUID) Scope {
	return Scope{SellerID: &sellerID}
}

// DeliveryScope restricts rows to one delivery man
func DeliveryScope(deliveryManID uuid.UUID) Scope {
	return Scope{DeliveryManID: &deliveryManID}
}

// Allows evaluates the scope against a row's owner columns
func (s Scope) Allows(sellerID uuid.UUID, deliveryManID *uuid.UUID) bool {
	if s.Deny {
		return false
	}
	if s.Unrestricted {
		return true
	}
	if s.SellerID != nil && *s.SellerID != sellerID {
		return false
	}
	if s.DeliveryManID != nil && (deliveryManID == nil || *s.DeliveryManID != *deliveryManID) {
		return false
	}
	return true
}

// ownedScope is shared by sales, orders and clients: admins see all rows,
// sellers and instant sellers their own, delivery men what is assigned to them.
func (a Actor) ownedScope() Scope {
	switch a.Role {
	case RoleAdmin:
		return Unrestricted()
	case RoleSeller, RoleInstant:
		return SellerScope(a.ID)
	case RoleDelivery:
		return DeliveryScope(a.ID)
	}
	return Scope{Deny: true}
}

// SaleScope returns the sales visible to the actor
func (a Actor) SaleScope() Scope {
	return a.ownedScope()
}

// OrderScope returns the orders visible to the actor
func (a Actor) OrderScope() Scope {
	return a.ownedScope()
}

// ClientScope returns the clients visible to the actor
func (a Actor) ClientScope() Scope {
	return a.ownedScope()
}

// StatsScope returns the sales aggregated for the actor. Only admins may
// narrow the aggregate to a chosen seller; everyone else is forced to
// their own rows.
func (a Actor) StatsScope(sellerFilter *uuid.UUID) Scope {
	if a.Role == RoleAdmin && sellerFilter != nil {
		return SellerScope(*sellerFilter)
	}
	return a.ownedScope()
}
