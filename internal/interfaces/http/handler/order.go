package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/stockroute/backend/internal/application/partner"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
)

// OrderManager manages client orders within the actor's scope
type OrderManager interface {
	Create(ctx context.Context, actor identity.Actor, req partnerapp.CreateOrderRequest) (*partnerapp.OrderResponse, error)
	List(ctx context.Context, actor identity.Actor, req partnerapp.OrderListRequest) (*shared.Paginated[partnerapp.OrderResponse], error)
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*partnerapp.OrderResponse, error)
	Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req partnerapp.UpdateOrderRequest) (*partnerapp.OrderResponse, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
	ConvertToSale(ctx context.Context, actor identity.Actor, id uuid.UUID) (*salesapp.SaleResponse, error)
}

// OrderHandler handles order requests
type OrderHandler struct {
	BaseHandler
	orderService OrderManager
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderManager) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update handles PATCH /orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ConvertToSale handles POST /orders/:id/sale
func (h *OrderHandler) ConvertToSale(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.orderService.ConvertToSale(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}
