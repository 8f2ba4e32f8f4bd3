package identity

import (
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a var so tests can lower it
var bcryptCost = bcrypt.DefaultCost

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// User is an account of any role. Sellers own SectorIDs; delivery men
// belong to SellerID and serve a subset of that seller's sectors.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	PasswordHash string
	Role         Role
	SellerID     *uuid.UUID
	SectorIDs    []uuid.UUID
}

// NewUser creates a user with a hashed password
func NewUser(username, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("unknown role %q", role)
	}
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          NormalizeUsername(username),
		Role:              role,
		SectorIDs:         make([]uuid.UUID, 0),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// AssignToSeller attaches a delivery man to a seller. The delivery sectors
// must be a subset of the seller's; an empty list inherits them all.
func (u *User) AssignToSeller(seller *User, sectorIDs []uuid.UUID) error {
	if u.Role != RoleDelivery {
		return shared.NewValidationError("only delivery users belong to a seller")
	}
	if seller == nil || seller.Role != RoleSeller {
		return shared.NewValidationError("delivery users must belong to a seller")
	}
	if len(sectorIDs) == 0 {
		sectorIDs = slices.Clone(seller.SectorIDs)
	}
	for _, id := range sectorIDs {
		if !seller.ServesSector(id) {
			return shared.NewValidationError("sector %s is not one of the seller's sectors", id)
		}
	}
	sellerID := seller.ID
	u.SellerID = &sellerID
	u.SectorIDs = sectorIDs
	u.Touch()
	return nil
}

// ServesSector reports whether the sector is in the user's sector list
func (u *User) ServesSector(sectorID uuid.UUID) bool {
	return slices.Contains(u.SectorIDs, sectorID)
}

// Actor returns the authenticated view of the user
func (u *User) Actor() Actor {
	return NewActor(u.ID, u.Role)
}

// NormalizeUsername returns the stored form of a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.NewValidationError("username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("password cannot exceed 72 characters")
	}
	return nil
}
