package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/stockroute/backend/internal/application/partner"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ClientManager manages clients within the actor's scope
type ClientManager interface {
	Create(ctx context.Context, actor identity.Actor, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error)
	List(ctx context.Context, actor identity.Actor, req partnerapp.ClientListRequest) (*shared.Paginated[partnerapp.ClientResponse], error)
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*partnerapp.ClientResponse, error)
}

// ClientHandler handles client requests
type ClientHandler struct {
	BaseHandler
	clientService ClientManager
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService ClientManager) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List handles GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.ClientListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.SectorID, ok = h.queryUUID(c, "sector_id"); !ok {
		return
	}
	if req.CityID, ok = h.queryUUID(c, "city_id"); !ok {
		return
	}

	page, err := h.clientService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}
