package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/cache"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client's retry key on sale creation
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// SaleCreator builds sales
type SaleCreator interface {
	Create(ctx context.Context, actor identity.Actor, req salesapp.CreateSaleRequest) (*salesapp.SaleResponse, error)
	CreateInstant(ctx context.Context, actor identity.Actor, req salesapp.InstantSaleRequest) (*salesapp.SaleResponse, error)
}

// SaleReader lists and fetches sales within the actor's scope
type SaleReader interface {
	List(ctx context.Context, actor identity.Actor, req salesapp.SaleListRequest) (*shared.Paginated[salesapp.SaleResponse], error)
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*salesapp.SaleResponse, error)
}

// SaleSettler applies status, return and payment updates
type SaleSettler interface {
	Update(ctx context.Context, actor identity.Actor, saleID uuid.UUID, req salesapp.SettlementRequest) (*salesapp.SaleResponse, error)
}

// IdempotencyStore remembers Idempotency-Key headers and the sale they produced
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, string, error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

// SaleHandler handles sale requests
type SaleHandler struct {
	BaseHandler
	builder     SaleCreator
	queries     SaleReader
	settlement  SaleSettler
	idempotency IdempotencyStore
}

// NewSaleHandler creates a new sale handler. A nil idempotency store
// ignores the Idempotency-Key header.
func NewSaleHandler(builder SaleCreator, queries SaleReader, settlement SaleSettler, idempotency IdempotencyStore) *SaleHandler {
	return &SaleHandler{
		builder:     builder,
		queries:     queries,
		settlement:  settlement,
		idempotency: idempotency,
	}
}

// Create handles POST /sales. A repeated Idempotency-Key from the same
// user returns the sale created by the first request.
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" || h.idempotency == nil {
		h.createSale(c, actor, req)
		return
	}
	if len(key) > maxIdempotencyKeyLen {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	key = actor.ID.String() + ":" + key

	claimed, result, err := h.idempotency.Claim(ctx, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !claimed {
		h.replay(c, actor, result)
		return
	}

	sale, err := h.builder.Create(ctx, actor, req)
	if err != nil {
		if relErr := h.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
			logger.FromContext(ctx).Warn("Failed to release idempotency key", zap.Error(relErr))
		}
		h.HandleError(c, err)
		return
	}
	if err := h.idempotency.Complete(context.WithoutCancel(ctx), key, sale.ID.String()); err != nil {
		logger.FromContext(ctx).Error("Failed to store idempotency result",
			zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
	h.Created(c, sale)
}

func (h *SaleHandler) createSale(c *gin.Context, actor identity.Actor, req salesapp.CreateSaleRequest) {
	sale, err := h.builder.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

func (h *SaleHandler) replay(c *gin.Context, actor identity.Actor, result string) {
	if result == cache.PendingResult {
		h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict,
			"A request with this Idempotency-Key is still being processed")
		return
	}
	saleID, err := uuid.Parse(result)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sale, err := h.queries.Get(c.Request.Context(), actor, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Idempotent-Replayed", "true")
	h.Success(c, sale)
}

// CreateInstant handles POST /instant-sales
func (h *SaleHandler) CreateInstant(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req salesapp.InstantSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sale, err := h.builder.CreateInstant(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req salesapp.SaleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.From.IsZero() || req.To.IsZero() {
		h.HandleError(c, shared.NewValidationError("from and to are required"))
		return
	}
	if req.ClientID, ok = h.queryUUID(c, "client_id"); !ok {
		return
	}

	page, err := h.queries.List(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.queries.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Settle handles PATCH /sales/:id
func (h *SaleHandler) Settle(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sale, err := h.settlement.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
