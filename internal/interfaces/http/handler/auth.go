package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stockroute/backend/internal/application/identity"
)

// Authenticator logs users in
type Authenticator interface {
	Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.LoginResult, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	BaseHandler
	authService Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
