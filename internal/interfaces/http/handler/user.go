package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stockroute/backend/internal/application/identity"
	"github.com/stockroute/backend/internal/domain/identity"
)

// UserManager creates and lists users
type UserManager interface {
	Create(ctx context.Context, actor identity.Actor, req identityapp.CreateUserRequest) (*identityapp.UserInfo, error)
	List(ctx context.Context, actor identity.Actor, req identityapp.UserListRequest) ([]identityapp.UserInfo, error)
}

// UserHandler handles user management requests
type UserHandler struct {
	BaseHandler
	userService UserManager
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserManager) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req identityapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req identityapp.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.SellerID, ok = h.queryUUID(c, "seller_id"); !ok {
		return
	}

	users, err := h.userService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}
