package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserInfo  `json:"user"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required,min=3,max=100"`
	Password  string      `json:"password" binding:"required,min=8,max=72"`
	Role      string      `json:"role" binding:"required,oneof=admin seller delivery instant"`
	SellerID  *uuid.UUID  `json:"seller_id"`
	SectorIDs []uuid.UUID `json:"sector_ids"`
}

// UserListRequest filters user listings
type UserListRequest struct {
	Role     string     `form:"role"`
	SellerID *uuid.UUID `form:"-"` // seller_id query parameter, parsed by the handler
}

// UserInfo is a user in API responses. The password hash never leaves the service.
type UserInfo struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Role      string      `json:"role"`
	SellerID  *uuid.UUID  `json:"seller_id,omitempty"`
	SectorIDs []uuid.UUID `json:"sector_ids"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	sectors := u.SectorIDs
	if sectors == nil {
		sectors = []uuid.UUID{}
	}
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		SellerID:  u.SellerID,
		SectorIDs: sectors,
		CreatedAt: u.CreatedAt,
	}
}
